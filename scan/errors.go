/*
Copyright 2026 Benny Powers. All rights reserved.
Use of this source code is governed by the GPLv3
license that can be found in the LICENSE file.
*/

package scan

import "errors"

// ErrInvalidDocument indicates a document that cannot be decoded.
var ErrInvalidDocument = errors.New("invalid document")
