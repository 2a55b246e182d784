// Copyright 2023 iamkroot. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

//go:build !unix

package cff

// adviseSequential is a no-op where madvise is unavailable.
func adviseSequential(data []byte) error {
	return nil
}
