package apperror

import (
	"errors"
	"fmt"
	"testing"
)

func TestKindOfFollowsWrapChain(t *testing.T) {
	base := InsufficientStock("insufficient stock for product %s", "Widget")
	wrapped := fmt.Errorf("create sale: %w", base)

	if got := KindOf(wrapped); got != KindInsufficientStock {
		t.Fatalf("KindOf = %q, want %q", got, KindInsufficientStock)
	}
	if !Is(wrapped, KindInsufficientStock) {
		t.Fatal("Is should match wrapped kind")
	}
	if Is(nil, KindInsufficientStock) {
		t.Fatal("nil error must not match any kind")
	}
}

func TestUnclassifiedIsInternal(t *testing.T) {
	if got := KindOf(errors.New("boom")); got != KindInternal {
		t.Fatalf("KindOf = %q, want internal", got)
	}
}

func TestWrapKeepsCause(t *testing.T) {
	cause := errors.New("lock timeout")
	err := Wrap(KindContention, cause, "product row busy")

	if !errors.Is(err, cause) {
		t.Fatal("wrapped cause should be reachable through errors.Is")
	}
	if err.Error() != "product row busy: lock timeout" {
		t.Fatalf("unexpected message %q", err.Error())
	}
}
