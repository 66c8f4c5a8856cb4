package binance

import "testing"

func TestSignPayloadKnownVector(t *testing.T) {
	// Published example pair for the futures REST API.
	payload := "symbol=LTCBTC&side=BUY&type=LIMIT&timeInForce=GTC&quantity=1&price=0.1&recvWindow=5000&timestamp=1499827319559"
	secret := "NhqPtmdSJYdKjVHjA7PZj4Mge3R5YNiP1e3UZjInClVN65XAbvqqM6A7H5fATj0j"
	want := "c8db56825ae71d6d79447849e617115f4a920fa2acdcab2b053c4b2838bd6b71"

	if got := signPayload(payload, secret); got != want {
		t.Fatalf("signature = %s, want %s", got, want)
	}
}

func TestSignPayloadDeterministic(t *testing.T) {
	first := signPayload("symbol=BTCUSDT&timestamp=1", "secret")
	second := signPayload("symbol=BTCUSDT&timestamp=1", "secret")
	if first != second {
		t.Fatalf("same inputs produced %s and %s", first, second)
	}
}

func TestSignPayloadSensitivity(t *testing.T) {
	base := signPayload("symbol=BTCUSDT&timestamp=1", "secret")
	if signPayload("symbol=BTCUSDT&timestamp=2", "secret") == base {
		t.Fatal("payload change did not change signature")
	}
	if signPayload("symbol=BTCUSDT&timestamp=1", "other") == base {
		t.Fatal("secret change did not change signature")
	}
}

func TestParamsEncodePreservesOrder(t *testing.T) {
	p := newParams()
	p.Set("symbol", "BTCUSDT")
	p.Set("side", "BUY")
	p.Set("quantity", "0.5")

	if got, want := p.Encode(), "symbol=BTCUSDT&side=BUY&quantity=0.5"; got != want {
		t.Fatalf("Encode() = %s, want %s", got, want)
	}
}

func TestParamsSetReplacesInPlace(t *testing.T) {
	p := newParams()
	p.Set("symbol", "BTCUSDT")
	p.Set("side", "BUY")
	p.Set("symbol", "ETHUSDT")

	if got, want := p.Encode(), "symbol=ETHUSDT&side=BUY"; got != want {
		t.Fatalf("Encode() = %s, want %s", got, want)
	}
	if p.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", p.Len())
	}
}

func TestParamsEncodeEscapes(t *testing.T) {
	p := newParams()
	p.Set("note", "a b&c")
	if got, want := p.Encode(), "note=a+b%26c"; got != want {
		t.Fatalf("Encode() = %s, want %s", got, want)
	}
}
