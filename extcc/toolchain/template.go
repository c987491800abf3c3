/**
 * Licensed to the Apache Software Foundation (ASF) under one
 * or more contributor license agreements.  See the NOTICE file
 * distributed with this work for additional information
 * regarding copyright ownership.  The ASF licenses this file
 * to you under the Apache License, Version 2.0 (the
 * "License"); you may not use this file except in compliance
 * with the License.  You may obtain a copy of the License at
 *
 *  http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing,
 * software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY
 * KIND, either express or implied.  See the License for the
 * specific language governing permissions and limitations
 * under the License.
 */

package toolchain

import (
	"fmt"
	"strings"
)

func isTmplChar(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' ||
		c >= '0' && c <= '9' || c == '_'
}

// Expand substitutes $name placeholders in a command template with their
// bindings, scanning left to right.  The longest binding key matching the
// text after '$' wins, so $objfiles is never mistaken for $objfile.  A
// placeholder with no binding is a programming error, not a user error:
// the caller failed to supply the full binding set for the template.
func Expand(tmpl string, bindings map[string]string) string {
	var sb strings.Builder
	sb.Grow(len(tmpl) * 2)

	i := 0
	for i < len(tmpl) {
		c := tmpl[i]
		if c != '$' {
			sb.WriteByte(c)
			i++
			continue
		}

		j := i + 1
		for j < len(tmpl) && isTmplChar(tmpl[j]) {
			j++
		}
		if j == i+1 {
			// A lone '$'; emit it verbatim.
			sb.WriteByte(c)
			i++
			continue
		}

		// Longest matching key wins.
		name := tmpl[i+1 : j]
		for len(name) > 0 {
			if _, ok := bindings[name]; ok {
				break
			}
			name = name[:len(name)-1]
		}
		if len(name) == 0 {
			panic(fmt.Sprintf("no binding for $%s in template %q",
				tmpl[i+1:j], tmpl))
		}

		sb.WriteString(bindings[name])
		i += 1 + len(name)
	}

	return sb.String()
}

// Expand1 substitutes the positional $1 placeholder; it is how the
// per-library link flag fragments are instantiated.
func Expand1(tmpl string, arg string) string {
	return strings.ReplaceAll(tmpl, "$1", arg)
}
