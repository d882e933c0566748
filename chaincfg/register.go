// Copyright (c) 2014-2016 The btcsuite developers
// Copyright (c) 2026 The zecnode developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chaincfg

func init() {
	for _, p := range []*Params{&MainNetParams, &TestNetParams, &RegtestParams} {
		if err := Register(p); err != nil {
			panic(err)
		}
	}
}
