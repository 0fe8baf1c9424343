// Copyright (c) 2026 The Remora developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package co

import (
	"runtime"
)

// Parallel runs a batch of work using as many CPU as it can.
// The returned channel is closed when all enqueued work is done.
func Parallel(cb func(chan<- func())) <-chan struct{} {
	queue := make(chan func(), runtime.NumCPU()*2)
	done := make(chan struct{})

	var goes Goes
	for range runtime.NumCPU() {
		goes.Go(func() {
			for work := range queue {
				work()
			}
		})
	}
	go func() {
		defer close(done)
		cb(queue)
		close(queue)
		goes.Wait()
	}()
	return done
}
