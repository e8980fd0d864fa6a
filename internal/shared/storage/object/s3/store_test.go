package s3

import (
	"errors"
	"fmt"
	"testing"

	"github.com/aws/smithy-go"
)

func TestApplyPrefix(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		prefix string
		key    string
		want   string
	}{
		{name: "no prefix", prefix: "", key: "cvs/a.pdf", want: "cvs/a.pdf"},
		{name: "simple prefix", prefix: "root", key: "cvs/a.pdf", want: "root/cvs/a.pdf"},
		{name: "prefix and key slashes", prefix: "/root/", key: "/cvs/a.pdf", want: "root/cvs/a.pdf"},
		{name: "empty key", prefix: "root", key: "", want: "root"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := applyPrefix(normalizePrefix(tt.prefix), tt.key); got != tt.want {
				t.Fatalf("applyPrefix(%q, %q) = %q, want %q", tt.prefix, tt.key, got, tt.want)
			}
		})
	}
}

func TestIsAPIErrorMatchesPreconditionFailed(t *testing.T) {
	err := fmt.Errorf("put: %w", &smithy.GenericAPIError{Code: "PreconditionFailed", Message: "At least one of the pre-conditions you specified did not hold"})
	if !isAPIError(err, "PreconditionFailed") {
		t.Fatalf("expected precondition failure to match")
	}
	if isAPIError(errors.New("plain"), "PreconditionFailed") {
		t.Fatalf("plain errors must not match")
	}
}
