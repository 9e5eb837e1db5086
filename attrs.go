// Copyright 2020 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package xmldom

// attrList is an ordered attribute collection for tags under construction.
// Insertion order is appearance order; setting a name that is already
// present overwrites its value in place, so the last occurrence wins
// without disturbing the position of the first.
type attrList struct {
	buf []Attr
}

func (l *attrList) reset() {
	l.buf = l.buf[:0]
}

func (l *attrList) set(name, value string) {
	for i := range l.buf {
		if l.buf[i].Name == name {
			l.buf[i].Value = value
			return
		}
	}
	l.buf = append(l.buf, Attr{Name: name, Value: value})
}

func (l *attrList) get() []Attr {
	if len(l.buf) == 0 {
		return nil
	}
	attrs := make([]Attr, len(l.buf))
	copy(attrs, l.buf)
	l.reset()
	return attrs
}
