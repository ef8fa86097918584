// SPDX-FileCopyrightText: 2026 The dcpdecode Authors
// SPDX-License-Identifier: GPL-2.0-or-later

package dcpdecode

import (
	"fmt"
	"io"
)

// HexDump writes p as offset, hex bytes and printable ASCII, 16 per line.
// Line feeds in DCP messages show up as '.'.
func HexDump(w io.Writer, p []byte) {
	var offset = 0

	for len(p) > 0 {
		var n = min(len(p), 16)

		fmt.Fprintf(w, "  %03x: ", offset)

		for i := 0; i < n; i++ {
			fmt.Fprintf(w, " %02x", p[i])
		}

		for i := n; i < 16; i++ {
			fmt.Fprint(w, "   ")
		}

		fmt.Fprint(w, "  ")

		for i := 0; i < n; i++ {
			fmt.Fprint(w, string(IfThenElse(p[i] >= 0x20 && p[i] <= 0x7E, rune(p[i]), '.')))
		}

		fmt.Fprint(w, "\n")

		p = p[n:]
		offset += n
	}
}
