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

// Package tal holds the identity of trust anchors and reads trust anchor
// locator files as defined in RFC 8630.
package tal

import (
	"bufio"
	"bytes"
	"crypto/x509"
	"encoding/base64"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rpki-rp/validator/pkg/private/serrors"
)

// Ext is the file extension of TAL files.
const Ext = ".tal"

// Info is the identity of a trust anchor. It is immutable once created and
// can be shared freely between the validator and the reporting components.
type Info struct {
	name string
	uris []string
	key  []byte
}

// NewInfo creates a trust anchor identity. The slices are copied.
func NewInfo(name string, uris []string, key []byte) *Info {
	return &Info{
		name: name,
		uris: append([]string(nil), uris...),
		key:  append([]byte(nil), key...),
	}
}

// Name returns the display name of the trust anchor.
func (i *Info) Name() string {
	return i.name
}

// URIs returns a copy of the certificate URIs of the trust anchor.
func (i *Info) URIs() []string {
	return append([]string(nil), i.uris...)
}

// KeyInfo returns a copy of the DER encoded SubjectPublicKeyInfo.
func (i *Info) KeyInfo() []byte {
	return append([]byte(nil), i.key...)
}

func (i *Info) String() string {
	return i.name
}

// Read parses a TAL. Leading comment lines starting with '#' are skipped,
// followed by one or more URIs, an empty line and the base64 encoded
// SubjectPublicKeyInfo, which may span several lines.
func Read(name string, r io.Reader) (*Info, error) {
	scanner := bufio.NewScanner(r)
	var (
		uris    []string
		keyB64  strings.Builder
		inKey   bool
		comment = true
	)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		switch {
		case comment && strings.HasPrefix(line, "#"):
			continue
		case !inKey && strings.TrimSpace(line) == "":
			comment = false
			if len(uris) == 0 {
				// Blank lines between comments and URIs are tolerated.
				continue
			}
			inKey = true
		case !inKey:
			comment = false
			uri := strings.TrimSpace(line)
			if !strings.HasPrefix(uri, "rsync://") && !strings.HasPrefix(uri, "https://") {
				return nil, serrors.New("unsupported URI scheme in TAL", "tal", name, "uri", uri)
			}
			uris = append(uris, uri)
		default:
			keyB64.WriteString(strings.TrimSpace(line))
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, serrors.Wrap("reading TAL", err, "tal", name)
	}
	if len(uris) == 0 {
		return nil, serrors.New("no URI in TAL", "tal", name)
	}
	if keyB64.Len() == 0 {
		return nil, serrors.New("no key in TAL", "tal", name)
	}
	key, err := base64.StdEncoding.DecodeString(keyB64.String())
	if err != nil {
		return nil, serrors.Wrap("decoding TAL key", err, "tal", name)
	}
	if _, err := x509.ParsePKIXPublicKey(key); err != nil {
		return nil, serrors.Wrap("parsing TAL key", err, "tal", name)
	}
	return &Info{name: name, uris: uris, key: key}, nil
}

// ReadFile reads the TAL in file. The name is the file name without the
// extension.
func ReadFile(file string) (*Info, error) {
	raw, err := os.ReadFile(file)
	if err != nil {
		return nil, err
	}
	name := strings.TrimSuffix(filepath.Base(file), Ext)
	return Read(name, bytes.NewReader(raw))
}

// ReadDir reads all TAL files in dir, sorted by name.
func ReadDir(dir string) ([]*Info, error) {
	files, err := filepath.Glob(filepath.Join(dir, "*"+Ext))
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	infos := make([]*Info, 0, len(files))
	var errs serrors.List
	for _, f := range files {
		info, err := ReadFile(f)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		infos = append(infos, info)
	}
	if err := errs.ToError(); err != nil {
		return nil, serrors.Wrap("reading TAL directory", err, "dir", dir)
	}
	return infos, nil
}
