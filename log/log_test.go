// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package log

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"math/big"
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTerminalHandler(t *testing.T) {
	var out bytes.Buffer
	SetDefault(NewLogger(NewTerminalHandler(&out, false)))
	defer SetDefault(NewLogger(DiscardHandler()))

	logger := WithContext("pkg", "escrow")
	logger.Info("created lock", "id", 1, "amount", big.NewInt(1000), "err", errors.New("boom"))

	line := out.String()
	assert.Contains(t, line, "INFO [")
	assert.Contains(t, line, "created lock")
	assert.Contains(t, line, "pkg=escrow")
	assert.Contains(t, line, "id=1")
	assert.Contains(t, line, "amount=1000")
	assert.Contains(t, line, `err="boom"`)
}

func TestLevelFiltering(t *testing.T) {
	var out bytes.Buffer
	var lvl slog.LevelVar
	lvl.Set(LevelWarn)
	SetDefault(NewLogger(NewTerminalHandlerWithLevel(&out, &lvl, false)))
	defer SetDefault(NewLogger(DiscardHandler()))

	Info("hidden")
	Warn("shown")
	assert.NotContains(t, out.String(), "hidden")
	assert.Contains(t, out.String(), "WARN")
}

func TestJSONHandlerBigNumbers(t *testing.T) {
	var out bytes.Buffer
	l := NewLogger(JSONHandler(&out))
	l.Info("supply", "big", big.NewInt(42), "u256", uint256.NewInt(7))

	var rec map[string]any
	require.NoError(t, json.Unmarshal(out.Bytes(), &rec))
	assert.Equal(t, "INFO", rec["lvl"])
	assert.Equal(t, "42", rec["big"])
	assert.Equal(t, "7", rec["u256"])
}

func TestFromLegacyLevel(t *testing.T) {
	assert.Equal(t, LevelCrit, FromLegacyLevel(0))
	assert.Equal(t, LevelInfo, FromLegacyLevel(3))
	assert.Equal(t, LevelTrace, FromLegacyLevel(9))
	assert.Equal(t, "TRCE", LevelString(LevelTrace))
	assert.Equal(t, "EROR", LevelString(LevelError))
}
