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
	"strings"

	"github.com/extcc/extcc/extcc/config"
	"github.com/extcc/extcc/extcc/platform"
	"github.com/extcc/extcc/util"
)

// GenerateScript writes a standalone build script into the nimcache:
// every compile command followed by the link command, with the line
// convention of the target OS.  nimbase.h is placed next to it so the
// script works without the compiler's lib directory.
func GenerateScript(conf *config.Config, res *BuildResult) error {
	eol := "\n"
	if platform.IsWindowsLike(conf.TargetOS) {
		eol = "\r\n"
	}

	var sb strings.Builder
	for _, e := range res.CompileCmds {
		sb.WriteString(e.Cmd)
		sb.WriteString(eol)
	}
	for _, cmd := range res.LinkCmds {
		sb.WriteString(cmd)
		sb.WriteString(eol)
	}

	outName := filepath.Base(conf.AbsOutFile())
	outName = strings.TrimSuffix(outName, filepath.Ext(outName))
	name := "compile_" + outName + "." +
		platform.OS[conf.TargetOS].ScriptExt

	path := filepath.Join(conf.NimcacheDir, name)
	if err := os.WriteFile(path, []byte(sb.String()), 0755); err != nil {
		return util.FmtCcError("unable to write script %s: %s", path,
			err.Error())
	}

	// The generated C includes nimbase.h from the compiler's lib dir;
	// ship a copy so the script is self-contained.
	base := filepath.Join(conf.LibPath, "nimbase.h")
	if util.NodeExist(base) {
		dst := filepath.Join(conf.NimcacheDir, "nimbase.h")
		if err := util.CopyFile(base, dst); err != nil {
			return err
		}
	}

	return nil
}
