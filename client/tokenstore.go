/*************************************************************************
 * Copyright 2025 EdgeFirst AI, Inc. All rights reserved.
 * Contact: <legal@edgefirst.ai>
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

package client

import (
	"os"
	"path/filepath"

	"github.com/google/renameio"
)

const (
	tokenVendorDir  = `EdgeFirstAI`
	tokenProductDir = `studio`
	tokenFileName   = `token`
)

// DefaultTokenPath is the per-user token location under the OS config
// directory.
func DefaultTokenPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ``, err
	}
	return filepath.Join(dir, tokenVendorDir, tokenProductDir, tokenFileName), nil
}

// LoadToken reads the bearer token at path.  A missing file is not an
// error, it just means no token.  The file content is used verbatim, no
// whitespace trimming.
func LoadToken(path string) (string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return ``, nil
		}
		return ``, err
	}
	return string(b), nil
}

// SaveToken writes the token atomically, creating parent directories as
// needed.  Tokens are credentials, so the file is user-only.
func SaveToken(path, token string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}
	return renameio.WriteFile(path, []byte(token), 0600)
}

// EraseToken removes the token file; absence is fine.
func EraseToken(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
