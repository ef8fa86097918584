// SPDX-FileCopyrightText: 2026 The dcpdecode Authors
// SPDX-License-Identifier: GPL-2.0-or-later

package dcpdecode

/*------------------------------------------------------------------
 *
 * Purpose:	GOES pseudo-binary: six bits per printable character,
 *		most significant character first.
 *
 * Description:	The low six bits of each character carry the value.
 *		'@' (0x40) is 0 and '?' (0x3F) is 63.  '/' is accepted
 *		as another way of writing 63, since some platforms send
 *		it in place of DEL.  Nothing above DEL (0x7F) is pseudo
 *		binary.
 *
 *		Signed values are two's complement over all the bits,
 *		so "???" is -1 signed and 262143 unsigned.
 *
 *------------------------------------------------------------------*/

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/pflag"
)

func pseudoBinaryDigit(b byte) (int64, bool) {
	switch {
	case b == '/':
		return 63, true
	case b < 0x3F || b > 0x7F:
		return 0, false
	default:
		return int64(b & 0x3F), true
	}
}

// DecodePseudoBinary converts a field to an integer.
func DecodePseudoBinary(field []byte, signed bool) (int64, error) {
	if len(field) == 0 {
		return 0, &FieldParseError{Field: "", Msg: "empty pseudo binary field"}
	}

	var result int64
	for _, b := range field {
		var d, ok = pseudoBinaryDigit(b)
		if !ok {
			return 0, &FieldParseError{Field: string(field),
				Msg: fmt.Sprintf("illegal character 0x%02x in pseudo binary data", b)}
		}
		result = result<<6 | d
	}

	if signed {
		var bits = uint(6 * len(field))
		if result&(1<<(bits-1)) != 0 {
			result -= 1 << bits
		}
	}

	return result, nil
}

// EncodePseudoBinary is the reverse, n characters wide.  Values that don't
// fit are truncated to the low 6*n bits.
func EncodePseudoBinary(value int64, n int) []byte {
	var out = make([]byte, n)

	for i := n - 1; i >= 0; i-- {
		var d = byte(value & 0x3F)
		if d == 63 {
			out[i] = '?'
		} else {
			out[i] = 0x40 | d
		}
		value >>= 6
	}

	return out
}

/*------------------------------------------------------------------
 *
 * Name:	PPB2IntMain
 *
 * Purpose:	Little utility to show what pseudo binary strings mean.
 *
 * Usage:	ppb2int [-s] field ...
 *
 *------------------------------------------------------------------*/

func PPB2IntMain() {
	var signed = pflag.BoolP("signed", "s", false, "Treat fields as signed, two's complement.")
	var help = pflag.BoolP("help", "h", false, "Display help text.")

	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "%s - Decode pseudo binary fields.\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Usage: %s [-s] field ...\n\n", os.Args[0])
		pflag.PrintDefaults()
	}

	pflag.Parse()

	if *help || pflag.NArg() == 0 {
		pflag.Usage()
		os.Exit(1)
	}

	for _, arg := range pflag.Args() {
		var v, err = DecodePseudoBinary([]byte(arg), *signed)
		if err != nil {
			fmt.Printf("%s: %s\n", arg, err)
			continue
		}
		fmt.Printf("%s = %s\n", arg, strconv.FormatInt(v, 10))
	}
}
