// flex_int64_test.go
//
// Building and document registry data service
// Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC
//
// This file is part of opsregistry.
// opsregistry is free software: you can redistribute it and/or modify it
// under the terms of the GNU Affero General Public License as published by the Free Software
// Foundation, either version 3 of the License, or (at your option) any later version.
// opsregistry is distributed in the hope that it will be useful, but WITHOUT ANY WARRANTY;
// without even the implied warranty of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
// See the GNU Affero General Public License for more details.
// You should have received a copy of the GNU Affero General Public License along with opsregistry.
// If not, see <https://www.gnu.org/licenses/>.
// Additional terms under GNU AGPL version 3 section 7:
// a) The reasonable legal notice of original copyright and author attribution must be preserved
//    by including the string: "Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC"
//    in this material, copies, or source code of derived works.

package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlexInt64Unmarshal(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    int64
		wantErr bool
	}{
		{name: "number", input: `{"Length": 245000}`, want: 245000},
		{name: "string", input: `{"Length": "850000"}`, want: 850000},
		{name: "padded string", input: `{"Length": " 12 "}`, want: 12},
		{name: "empty string", input: `{"Length": ""}`, want: 0},
		{name: "null", input: `{"Length": null}`, want: 0},
		{name: "bad string", input: `{"Length": "big"}`, wantErr: true},
		{name: "bool", input: `{"Length": true}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var v struct {
				Length FlexInt64
			}
			err := json.Unmarshal([]byte(tt.input), &v)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, v.Length.Int64())
		})
	}
}

func TestFlexInt64Marshal(t *testing.T) {
	b, err := json.Marshal(FlexInt64(42))
	require.NoError(t, err)
	assert.Equal(t, "42", string(b))
}

func TestCustomError(t *testing.T) {
	err := NewCustomError(401, "Unauthorized", "session is not valid")
	assert.Equal(t, "401: session is not valid [type: Unauthorized]", err.Error())
}
