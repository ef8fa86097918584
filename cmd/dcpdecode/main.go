package main

import (
	dcpdecode "github.com/doismellburning/dcpdecode/src"
)

func main() {
	dcpdecode.DecodeMain()
}
