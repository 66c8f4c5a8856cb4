package pricebook

import (
	"sync"
	"testing"
)

func TestUpsertThenGet(t *testing.T) {
	book := New()

	if _, ok := book.Get("BTCUSDT"); ok {
		t.Fatal("expected no quote before first observation")
	}

	book.Upsert("BTCUSDT", 100.5, 100.6)
	quote, ok := book.Get("BTCUSDT")
	if !ok {
		t.Fatal("expected quote after upsert")
	}
	if quote.Bid != 100.5 || quote.Ask != 100.6 {
		t.Fatalf("unexpected quote %+v", quote)
	}
}

func TestUpsertOverwritesBothFieldsWithoutAffectingOthers(t *testing.T) {
	book := New()
	book.Upsert("BTCUSDT", 100.5, 100.6)
	book.Upsert("ETHUSDT", 2000.0, 2000.5)

	book.Upsert("BTCUSDT", 101.0, 101.1)

	btc, _ := book.Get("BTCUSDT")
	if btc.Bid != 101.0 || btc.Ask != 101.1 {
		t.Fatalf("expected overwritten quote, got %+v", btc)
	}
	eth, _ := book.Get("ETHUSDT")
	if eth.Bid != 2000.0 || eth.Ask != 2000.5 {
		t.Fatalf("other symbol must be untouched, got %+v", eth)
	}
	if book.Len() != 2 {
		t.Fatalf("expected 2 symbols, got %d", book.Len())
	}
}

func TestConcurrentWriters(t *testing.T) {
	book := New()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 1000; j++ {
				book.Upsert("BTCUSDT", float64(n), float64(n)+0.1)
				book.Get("BTCUSDT")
			}
		}(i)
	}
	wg.Wait()

	quote, ok := book.Get("BTCUSDT")
	if !ok {
		t.Fatal("expected quote after concurrent writes")
	}
	if quote.Ask != quote.Bid+0.1 {
		t.Fatalf("torn quote observed: %+v", quote)
	}
}
