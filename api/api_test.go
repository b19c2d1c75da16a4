package api_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/momentics/meshbuf/api"
)

func TestErrorContextIsCopy(t *testing.T) {
	err := api.ErrInvalidArgs.WithContext("offset", 9)
	if !errors.Is(err, api.ErrInvalidArgs) || errors.Is(err, api.ErrNotFound) {
		t.Fatal("Expected match by code only")
	}
	if len(api.ErrInvalidArgs.Context) != 0 {
		t.Error("Sentinel must not be mutated by WithContext")
	}
	wrapped := fmt.Errorf("load: %w", err.WithContext("length", 3))
	if api.CodeOf(wrapped) != api.ErrCodeInvalidArgs {
		t.Errorf("Expected invalid arguments, got %v", api.CodeOf(wrapped))
	}
	if api.CodeOf(errors.New("x")) != api.ErrCodeOK || api.CodeOf(nil) != api.ErrCodeOK {
		t.Error("Expected ErrCodeOK for foreign errors")
	}
}

func TestParsePriority(t *testing.T) {
	cases := map[string]api.Priority{
		"low": api.PriorityLow, "": api.PriorityNormal, "normal": api.PriorityNormal,
		"high": api.PriorityHigh, "net": api.PriorityNet, "network-control": api.PriorityNet,
	}
	for in, want := range cases {
		got, err := api.ParsePriority(in)
		if err != nil || got != want {
			t.Errorf("ParsePriority(%q): expected %v, got %v (%v)", in, want, got, err)
		}
		if in != "" && in != "network-control" && got.String() != in {
			t.Errorf("Expected round trip for %q, got %q", in, got.String())
		}
	}
	if _, err := api.ParsePriority("urgent"); !errors.Is(err, api.ErrInvalidArgs) {
		t.Errorf("Expected ErrInvalidArgs, got %v", err)
	}
	if api.Priority(4).Valid() {
		t.Error("Expected priority 4 invalid")
	}
}

func TestSubTypeMLE(t *testing.T) {
	if !api.SubTypeMLEAnnounce.IsMLE() || api.SubTypeJoinerEntrust.IsMLE() || api.SubTypeNone.IsMLE() {
		t.Error("Unexpected MLE classification")
	}
}
