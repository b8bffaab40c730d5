// Copyright (c) 2024 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>
package thor

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBytes32JSON(t *testing.T) {
	candidate := `"0x0000000000000000000000000000000000000000000000000063616e64696461"`

	var b Bytes32
	require.NoError(t, json.Unmarshal([]byte(candidate), &b))
	assert.Equal(t, BytesToBytes32([]byte("candida")), b)

	data, err := json.Marshal(map[string]Bytes32{"id": b})
	require.NoError(t, err)
	assert.Equal(t, `{"id":`+candidate+`}`, string(data))

	assert.Error(t, json.Unmarshal([]byte(`"0x1234"`), &b))
	assert.Error(t, json.Unmarshal([]byte(`1234`), &b))
}
