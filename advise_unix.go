// Copyright 2023 iamkroot. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

//go:build unix

package cff

import "golang.org/x/sys/unix"

// adviseSequential tells the kernel the mapping will be read front to back.
func adviseSequential(data []byte) error {
	if len(data) == 0 {
		return nil
	}
	return unix.Madvise(data, unix.MADV_SEQUENTIAL)
}
