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

package builder

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/extcc/extcc/extcc/config"
	"github.com/extcc/extcc/extcc/toolchain"
	"github.com/extcc/extcc/util"
)

// escape renders a flag string the way external tooling expects it in the
// mapping file: quoted with backslash escapes.
func escape(s string) string {
	return strconv.Quote(s)
}

// WriteMapping emits the INI-shaped mapping consumed by external tooling:
// the C file list, the effective compiler and linker flags, the library
// path, and the caller-provided symbol mapping blob.  A no-op unless
// mapping generation was requested.
func WriteMapping(conf *config.Config, symbolMapping string) error {
	if !conf.GlobalOptions.Has(config.OptGenMapping) {
		return nil
	}

	var sb strings.Builder

	sb.WriteString("[C_Files]\n")
	for i := range conf.ToCompile {
		sb.WriteString("--file:r\"" + conf.ToCompile[i].CName + "\"\n")
	}

	sb.WriteString("[C_Compiler]\nFlags=")
	sb.WriteString(escape(toolchain.CompileOptions(conf)))

	sb.WriteString("\n[Linker]\nFlags=")
	sb.WriteString(escape(toolchain.LinkOptions(conf)))

	sb.WriteString("\n[Environment]\nlibpath=")
	sb.WriteString(escape(conf.LibPath))

	sb.WriteString("\n[Symbols]\n")
	sb.WriteString(symbolMapping)

	path := filepath.Join(conf.ProjectPath, "mapping.txt")
	if err := os.WriteFile(path, []byte(sb.String()), 0644); err != nil {
		return util.FmtCcError("unable to write mapping file %s: %s", path,
			err.Error())
	}

	return nil
}
