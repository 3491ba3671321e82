/*
Copyright 2026 Benny Powers. All rights reserved.
Use of this source code is governed by the GPLv3
license that can be found in the LICENSE file.
*/

package logger

import (
	"bytes"
	"os"
	"testing"
)

func TestLevels(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	t.Cleanup(func() {
		SetOutput(os.Stderr)
		SetDebug(false)
	})

	Warn("careful %d", 1)
	Error("broken %s", "thing")
	Info("plain")
	Debug("hidden")

	want := "warning: careful 1\nerror: broken thing\nplain\n"
	if got := buf.String(); got != want {
		t.Errorf("output = %q, want %q", got, want)
	}

	buf.Reset()
	SetDebug(true)
	Debug("shown %v", true)
	if got := buf.String(); got != "debug: shown true\n" {
		t.Errorf("debug output = %q", got)
	}
}
