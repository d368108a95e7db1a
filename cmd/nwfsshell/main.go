// Copyright (c) 2025 Stefano Scafiti
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/ostafen/nwfsarc/cmd/nwfsshell/cmd"
)

func main() {
	PrintLogo()

	err := cmd.Execute()
	if err == nil {
		os.Exit(cmd.ExitOK)
	}

	var me *cmd.MountExit
	if errors.As(err, &me) {
		fmt.Fprintln(os.Stderr, me.Error())
		os.Exit(me.Code())
	}

	fmt.Fprintln(os.Stderr, err)
	os.Exit(cmd.ExitUsageError)
}

func PrintLogo() {
	fmt.Println(" _ __  _      ____ ______      __    __   ___")
	fmt.Println("| '_ \\| |/\\/|/ _  (  ___|  _  |  |__|  |_/ _ \\")
	fmt.Println("| | | | |  |  __/ |__  | | |  |    |      __/")
	fmt.Println("|_| |_|_|  |\\___/|____| |_|   |__|__|__|\\___|")
	fmt.Println()
	fmt.Println("NWFS286/NWFS386 read-only browser")
	fmt.Println()
}
