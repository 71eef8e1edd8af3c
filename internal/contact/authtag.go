// SPDX-License-Identifier: AGPL-3.0-or-later
// dect-nr-plus-l2core - A DECT NR+ layer-2 MAC protocol engine
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.

package contact

import (
	"crypto/sha256"
	"crypto/subtle"

	"golang.org/x/crypto/pbkdf2"
)

const (
	authTagIterations = 4096
	authTagLen        = 32
)

// DeriveAuthTag derives the association authentication tag from a shared
// secret and a per-association nonce (e.g. the PT's long RD ID concatenated
// with a random challenge). This authenticates the association handshake
// only; it is not a media-plane cipher.
func DeriveAuthTag(secret, nonce []byte) []byte {
	return pbkdf2.Key(secret, nonce, authTagIterations, authTagLen, sha256.New)
}

// VerifyAuthTag reports whether tag matches the tag derived from secret and
// nonce, using a constant-time comparison so association rejection cannot be
// timed to leak the expected tag.
func VerifyAuthTag(secret, nonce, tag []byte) bool {
	expected := DeriveAuthTag(secret, nonce)
	return subtle.ConstantTimeCompare(expected, tag) == 1
}
