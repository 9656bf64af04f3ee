// blob_test.go
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

package blob

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func exerciseStore(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	info, err := s.Put(ctx, "buildings/1/a.txt", strings.NewReader("hello"), PutOptions{
		ContentType: "text/plain",
		Metadata:    map[string]string{"document": "1"},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(5), info.Size)
	assert.Equal(t, "text/plain", info.ContentType)

	_, err = s.Put(ctx, "buildings/1/a.txt", strings.NewReader("again"), PutOptions{})
	assert.ErrorIs(t, err, ErrExists)

	got, rc, err := s.Get(ctx, "buildings/1/a.txt")
	require.NoError(t, err)
	body, err := io.ReadAll(rc)
	require.NoError(t, rc.Close())
	require.NoError(t, err)
	assert.Equal(t, "hello", string(body))
	assert.Equal(t, "1", got.Metadata["document"])

	_, err = s.Put(ctx, "buildings/2/b.txt", strings.NewReader("bb"), PutOptions{})
	require.NoError(t, err)

	list, err := s.List(ctx, "buildings/1/")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "buildings/1/a.txt", list[0].Key)

	all, err := s.List(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	removed, err := s.Delete(ctx, "buildings/1/a.txt")
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = s.Delete(ctx, "buildings/1/a.txt")
	require.NoError(t, err)
	assert.False(t, removed)

	_, err = s.Head(ctx, "buildings/1/a.txt")
	assert.ErrorIs(t, err, ErrNotFound)
	_, _, err = s.Get(ctx, "buildings/1/a.txt")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore(t *testing.T) {
	s := NewMemory()
	assert.Equal(t, DriverMemory, s.Driver())
	exerciseStore(t, s)
}

func TestFilesystemStore(t *testing.T) {
	s, err := NewFilesystem(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, DriverFilesystem, s.Driver())
	exerciseStore(t, s)
}

func TestFilesystemETag(t *testing.T) {
	s, err := NewFilesystem(t.TempDir())
	require.NoError(t, err)

	info, err := s.Put(context.Background(), "x", strings.NewReader("abc"), PutOptions{})
	require.NoError(t, err)
	assert.Equal(t, "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad", info.ETag)
}

func TestSanitizeKey(t *testing.T) {
	for _, key := range []string{"", "  ", "../etc/passwd", "a/../../b", "/abs"} {
		_, err := sanitizeKey(key)
		assert.Error(t, err, key)
	}
	k, err := sanitizeKey("a//b/./c.pdf")
	require.NoError(t, err)
	assert.Equal(t, "a/b/c.pdf", k)
}

func TestMemoryMetadataIsCopied(t *testing.T) {
	ctx := context.Background()
	s := NewMemory()
	md := map[string]string{"k": "v"}
	_, err := s.Put(ctx, "k", strings.NewReader(""), PutOptions{Metadata: md})
	require.NoError(t, err)

	md["k"] = "changed"
	info, err := s.Head(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v", info.Metadata["k"])
}
