// debounce.go
//
// Building and document registry data service
// Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC
//
// This file is part of opsregistry.
// opsregistry is free software: you can redistribute it and/or modify it
// under the terms of the GNU Affero General Public License as published by the Free Software
// Foundation, either version 3 of the License, or (at your option) any later version.
// opsregistry is distributed in the hope that it will be useful, but WITHOUT ANY WARRANTY;
// without even the implied warranty of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
// See the GNU Affero General Public License for more details.
// You should have received a copy of the GNU Affero General Public License along with opsregistry.
// If not, see <https://www.gnu.org/licenses/>.
// Additional terms under GNU AGPL version 3 section 7:
// a) The reasonable legal notice of original copyright and author attribution must be preserved
//    by including the string: "Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC"
//    in this material, copies, or source code of derived works.

package store

import (
	"sync"
	"time"
)

// Debouncer commits the last pushed value once no push has arrived for the delay
type Debouncer struct {
	mu      sync.Mutex
	delay   time.Duration
	commit  func(string)
	timer   *time.Timer
	seq     uint64
	pending string
	armed   bool
}

// NewDebouncer calls commit with the latest value delay after the last Push
func NewDebouncer(delay time.Duration, commit func(string)) *Debouncer {
	return &Debouncer{delay: delay, commit: commit}
}

// Push replaces the pending value and restarts the delay
func (d *Debouncer) Push(v string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
	}
	d.seq++
	seq := d.seq
	d.pending = v
	d.armed = true
	d.timer = time.AfterFunc(d.delay, func() { d.fire(seq) })
}

// Flush commits the pending value now, if there is one
func (d *Debouncer) Flush() {
	d.mu.Lock()
	if d.timer != nil {
		d.timer.Stop()
	}
	seq := d.seq
	d.mu.Unlock()
	d.fire(seq)
}

// Stop drops the pending value
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
	}
	d.armed = false
}

func (d *Debouncer) fire(seq uint64) {
	d.mu.Lock()
	if !d.armed || seq != d.seq {
		d.mu.Unlock()
		return
	}
	v := d.pending
	d.armed = false
	d.mu.Unlock()
	d.commit(v)
}
