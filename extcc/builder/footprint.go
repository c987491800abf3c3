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
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/extcc/extcc/extcc/config"
	"github.com/extcc/extcc/extcc/platform"
	"github.com/extcc/extcc/extcc/toolchain"
	"github.com/extcc/extcc/util"
)

// footprint fingerprints everything that can invalidate a compiled object:
// the source bytes, the target platform, the toolchain, and the exact
// compile command the current configuration would produce.
func footprint(conf *config.Config, cfile *config.CFile) (string, error) {
	srcHash, err := util.Sha1OfFile(cfile.CName)
	if err != nil {
		return "", err
	}

	cmd, err := toolchain.CompileCFileCmd(conf, cfile, false, true)
	if err != nil {
		return "", err
	}

	return util.Sha1OfBytes([]byte(srcHash +
		platform.OS[conf.TargetOS].Name +
		platform.CPU[conf.TargetCPU].Name +
		toolchain.Get(conf.CCompiler).Name +
		cmd)), nil
}

// footprintFile is the sidecar holding the last-known footprint of an
// external source, next to its object in the nimcache.
func footprintFile(conf *config.Config, cfile *config.CFile) string {
	obj := toolchain.ObjFilePath(conf, cfile)
	return strings.TrimSuffix(obj,
		"."+toolchain.Get(conf.CCompiler).ObjExt) + ".sha1"
}

// externalFileChanged decides whether an external source needs
// recompilation.  The new footprint is persisted immediately, before any
// compile runs: a failed compile therefore reads as "unchanged" on retry
// and is recompiled only because the object was deleted up front.  Both
// behaviors belong together.
func externalFileChanged(conf *config.Config, cfile *config.CFile) (bool, error) {
	if !conf.Backend.CompilesC() {
		return false, nil
	}

	current, err := footprint(conf, cfile)
	if err != nil {
		return false, err
	}

	hashFile := footprintFile(conf, cfile)

	stored := ""
	if buf, err := os.ReadFile(hashFile); err == nil {
		stored = strings.TrimSpace(string(buf))
	}

	if stored == current {
		return false, nil
	}

	log.Debugf("footprint changed for %s: %q -> %q", cfile.CName, stored,
		current)
	if err := os.WriteFile(hashFile, []byte(current+"\n"), 0644); err != nil {
		return true, util.FmtCcError("unable to write footprint file %s: %s",
			hashFile, err.Error())
	}

	return true, nil
}

// AddExternalFileToCompile runs the footprint oracle on one external
// source and queues it.  An unchanged source whose object still exists is
// marked cached; otherwise the stale object is deleted so a failing
// compile cannot leave old output behind.
func AddExternalFileToCompile(conf *config.Config, cfile config.CFile) error {
	cfile.Flags |= config.CfileExternal

	obj := toolchain.ObjFilePath(conf, &cfile)

	// The stored footprint is refreshed unconditionally, so the next
	// build sees current state even when this one is forced or fails.
	changed, err := externalFileChanged(conf, &cfile)
	if err != nil {
		return err
	}

	if !conf.GlobalOptions.Has(config.OptForceFullMake) && !changed &&
		util.NodeExist(obj) {

		cfile.Flags |= config.CfileCached
		conf.AddFileToCompile(cfile)
		return nil
	}

	os.Remove(obj)
	conf.AddFileToCompile(cfile)

	return nil
}
