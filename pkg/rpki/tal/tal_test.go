// Copyright 2026 Anapaya Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//   http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package tal_test

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"encoding/base64"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rpki-rp/validator/pkg/rpki/tal"
)

func testKey(t *testing.T) []byte {
	priv, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)
	der, err := x509.MarshalPKIXPublicKey(&priv.PublicKey)
	require.NoError(t, err)
	return der
}

// wrapped splits the base64 encoding of key into 64 character lines.
func wrapped(key []byte) string {
	enc := base64.StdEncoding.EncodeToString(key)
	var lines []string
	for len(enc) > 64 {
		lines = append(lines, enc[:64])
		enc = enc[64:]
	}
	return strings.Join(append(lines, enc), "\n")
}

func TestRead(t *testing.T) {
	key := testKey(t)
	tests := map[string]struct {
		input     string
		uris      []string
		assertErr assert.ErrorAssertionFunc
	}{
		"plain": {
			input:     "rsync://rpki.example.net/ta/ta.cer\n\n" + wrapped(key) + "\n",
			uris:      []string{"rsync://rpki.example.net/ta/ta.cer"},
			assertErr: assert.NoError,
		},
		"comments and two uris": {
			input: "# Example trust anchor\n# second comment line\n" +
				"https://rpki.example.net/ta/ta.cer\n" +
				"rsync://rpki.example.net/ta/ta.cer\n\n" + wrapped(key),
			uris: []string{
				"https://rpki.example.net/ta/ta.cer",
				"rsync://rpki.example.net/ta/ta.cer",
			},
			assertErr: assert.NoError,
		},
		"crlf line endings": {
			input: strings.ReplaceAll(
				"rsync://rpki.example.net/ta/ta.cer\n\n"+wrapped(key)+"\n", "\n", "\r\n"),
			uris:      []string{"rsync://rpki.example.net/ta/ta.cer"},
			assertErr: assert.NoError,
		},
		"no uri": {
			input:     "\n" + wrapped(key),
			assertErr: assert.Error,
		},
		"unsupported scheme": {
			input:     "http://rpki.example.net/ta.cer\n\n" + wrapped(key),
			assertErr: assert.Error,
		},
		"no key": {
			input:     "rsync://rpki.example.net/ta/ta.cer\n\n",
			assertErr: assert.Error,
		},
		"bad base64": {
			input:     "rsync://rpki.example.net/ta/ta.cer\n\n!!notbase64!!",
			assertErr: assert.Error,
		},
		"not a key": {
			input: "rsync://rpki.example.net/ta/ta.cer\n\n" +
				base64.StdEncoding.EncodeToString([]byte("garbage")),
			assertErr: assert.Error,
		},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			info, err := tal.Read("anchor-A", strings.NewReader(tc.input))
			tc.assertErr(t, err)
			if err != nil {
				return
			}
			assert.Equal(t, "anchor-A", info.Name())
			assert.Equal(t, tc.uris, info.URIs())
			assert.Equal(t, key, info.KeyInfo())
		})
	}
}

func TestInfoIsImmutable(t *testing.T) {
	uris := []string{"rsync://rpki.example.net/ta/ta.cer"}
	info := tal.NewInfo("anchor-A", uris, nil)
	uris[0] = "changed"
	got := info.URIs()
	got[0] = "changed too"
	assert.Equal(t, []string{"rsync://rpki.example.net/ta/ta.cer"}, info.URIs())
	assert.Equal(t, "anchor-A", info.String())
}

func TestReadDir(t *testing.T) {
	dir := t.TempDir()
	content := "rsync://rpki.example.net/ta/ta.cer\n\n" + wrapped(testKey(t)) + "\n"
	for _, name := range []string{"zeta.tal", "alpha.tal", "ignored.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
	}
	infos, err := tal.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, infos, 2)
	assert.Equal(t, "alpha", infos[0].Name())
	assert.Equal(t, "zeta", infos[1].Name())

	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.tal"), []byte("\n"), 0644))
	_, err = tal.ReadDir(dir)
	assert.Error(t, err)
}
