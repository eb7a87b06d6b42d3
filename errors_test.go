/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/Seednode/spyfall/games/spyfall"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{nil, http.StatusOK},
		{spyfall.ErrEmptyName, http.StatusBadRequest},
		{fmt.Errorf("%w: at most 12 characters", spyfall.ErrNameTooLong), http.StatusBadRequest},
		{spyfall.ErrEmptyCode, http.StatusBadRequest},
		{fmt.Errorf("%w: ZZZZ", spyfall.ErrRoomNotFound), http.StatusNotFound},
		{spyfall.ErrPlayerNotFound, http.StatusNotFound},
		{spyfall.ErrNotOwner, http.StatusForbidden},
		{spyfall.ErrOwnerCannotLeave, http.StatusForbidden},
		{spyfall.ErrNameTaken, http.StatusConflict},
		{errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		if got := statusFor(tt.err); got != tt.want {
			t.Errorf("statusFor(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

func TestNewLoggerVerbosity(t *testing.T) {
	var buf bytes.Buffer

	quiet := newLogger(&Config{}, &buf)
	quiet.Info().Msg("hidden")
	if buf.Len() != 0 {
		t.Fatalf("info logged without --verbose: %q", buf.String())
	}

	loud := newLogger(&Config{verbose: true}, &buf)
	loud.Info().Str("code", "ABCD").Msg("room created")
	if !strings.Contains(buf.String(), "room created") || !strings.Contains(buf.String(), "ABCD") {
		t.Fatalf("expected info line, got %q", buf.String())
	}
}

func TestNewPageEscapes(t *testing.T) {
	page := newPage(&Config{}, "<title>", "<b>")
	if strings.Contains(page, "<b>") {
		t.Fatalf("body not escaped: %s", page)
	}
}
