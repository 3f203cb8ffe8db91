package serialbus

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

type fakePort struct {
	replies *strings.Reader
	sent    bytes.Buffer
}

func (p *fakePort) Read(b []byte) (int, error)  { return p.replies.Read(b) }
func (p *fakePort) Write(b []byte) (int, error) { return p.sent.Write(b) }

func TestLoadStore(t *testing.T) {
	port := &fakePort{replies: strings.NewReader("ok 0x03000000\nok\nok 17\n")}
	b := New(port)

	if got := b.Load(0x40044010); got != 0x03000000 {
		t.Errorf("Load = %#x", got)
	}
	b.Store(0x40044014, 0x3000000)
	if got := b.Load(0x40016010); got != 17 {
		t.Errorf("Load = %d", got)
	}
	if err := b.Err(); err != nil {
		t.Fatal(err)
	}
	want := "r 0x40044010\nw 0x40044014 0x3000000\nr 0x40016010\n"
	if port.sent.String() != want {
		t.Errorf("sent %q, want %q", port.sent.String(), want)
	}
}

func TestErrorsAreSticky(t *testing.T) {
	tests := []struct {
		name    string
		replies string
		want    error
	}{
		{"remote", "err \"bus fault at 0x40044010\"\n", ErrRemote},
		{"garbage", "hello\n", ErrProtocol},
		{"bad number", "ok zz\n", ErrProtocol},
		{"missing value", "ok\n", ErrProtocol},
		{"unterminated quote", "err \"oops\n", ErrProtocol},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			port := &fakePort{replies: strings.NewReader(tc.replies)}
			b := New(port)
			if got := b.Load(0x40044010); got != 0 {
				t.Errorf("Load = %#x, want 0", got)
			}
			if !errors.Is(b.Err(), tc.want) {
				t.Fatalf("Err() = %v, want %v", b.Err(), tc.want)
			}
			sent := port.sent.Len()
			b.Store(0x40044014, 1)
			if port.sent.Len() != sent {
				t.Error("access sent after failure")
			}
		})
	}
}
