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

	json "github.com/goccy/go-json"
	"github.com/kardianos/osext"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cast"

	"github.com/extcc/extcc/extcc/config"
	"github.com/extcc/extcc/util"
)

// Plan is the machine-readable description of a fully resolved build,
// sufficient to repeat it without running the front end.
type Plan struct {
	// [source-path, compile-command] pairs for every non-cached unit.
	Compile [][]string `json:"compile"`
	// Every object file participating in the link.
	Link []string `json:"link"`
	// The assembled link command; one line per command when the build
	// produced several (hot code reload).
	LinkCmd string `json:"linkcmd"`

	// Run-support block; only present when the build is followed by a run.
	CmdLine  string     `json:"cmdline,omitempty"`
	DepFiles [][]string `json:"depfiles,omitempty"`
	NimExe   string     `json:"nimexe,omitempty"`
}

// PlanFile is where the build plan lives: <nimcache>/<project>.json.
func PlanFile(conf *config.Config) string {
	return filepath.Join(conf.NimcacheDir, conf.ProjectName+".json")
}

// selfExeHash fingerprints the running driver executable, so a plan from a
// different compiler release reads as stale.
func selfExeHash() (string, error) {
	exe, err := osext.Executable()
	if err != nil {
		return "", util.ChildCcError(err)
	}

	return util.Sha1OfFile(exe)
}

// WriteBuildPlan serializes the build described by res.  With run-on-build
// active the plan additionally records the user's command line, a hash per
// front-end input file, and a hash of the driver itself; the staleness
// detector compares exactly these.
func WriteBuildPlan(conf *config.Config, res *BuildResult) error {
	compile := make([][]string, 0, len(res.CompileCmds))
	for _, e := range res.CompileCmds {
		compile = append(compile, []string{e.CName, e.Cmd})
	}
	link := res.ObjFiles
	if link == nil {
		link = []string{}
	}

	doc := map[string]interface{}{
		"compile": compile,
		"link":    link,
		"linkcmd": strings.Join(res.LinkCmds, "\n"),
	}

	if conf.GlobalOptions.Has(config.OptRun) || conf.BetterRun {
		depfiles := [][]string{}
		for _, dep := range conf.ModuleFiles {
			if !filepath.IsAbs(dep) {
				continue
			}
			hash, err := util.Sha1OfFile(dep)
			if err != nil {
				return err
			}
			depfiles = append(depfiles, []string{dep, hash})
		}

		hash, err := selfExeHash()
		if err != nil {
			return err
		}

		doc["cmdline"] = conf.CommandLine
		doc["depfiles"] = depfiles
		doc["nimexe"] = hash
	}

	buf, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return util.ChildCcError(err)
	}

	path := PlanFile(conf)
	if err := os.WriteFile(path, buf, 0644); err != nil {
		return util.FmtCcError("unable to write build plan %s: %s", path,
			err.Error())
	}

	return nil
}

// planWarn flags a plan as stale with a one-line explanation.
func planWarn(path string, reason string) bool {
	util.ErrorMessage(util.VERBOSITY_QUIET,
		"Warning: build plan %s is stale: %s\n", path, reason)
	return true
}

// ChangedViaPlan reports whether the recorded build can be replayed as-is.
// Any missing file, missing key, parse error, or hash mismatch makes the
// plan stale; the host then re-runs the front end.
func ChangedViaPlan(conf *config.Config) bool {
	path := PlanFile(conf)

	buf, err := os.ReadFile(path)
	if err != nil {
		return true
	}

	if util.NodeNotExist(conf.AbsOutFile()) {
		return true
	}

	var raw map[string]interface{}
	if err := json.Unmarshal(buf, &raw); err != nil {
		return planWarn(path, err.Error())
	}

	for _, key := range []string{"cmdline", "nimexe", "depfiles"} {
		if _, ok := raw[key]; !ok {
			return planWarn(path, "missing key: "+key)
		}
	}

	if cast.ToString(raw["cmdline"]) != conf.CommandLine {
		return true
	}

	selfHash, err := selfExeHash()
	if err != nil || cast.ToString(raw["nimexe"]) != selfHash {
		return true
	}

	for _, entry := range cast.ToSlice(raw["depfiles"]) {
		pair := cast.ToStringSlice(entry)
		if len(pair) != 2 {
			return planWarn(path, "malformed depfiles entry")
		}

		hash, err := util.Sha1OfFile(pair[0])
		if err != nil || hash != pair[1] {
			log.Debugf("dependency changed: %s", pair[0])
			return true
		}
	}

	return false
}

// RunPlan replays a previously written build plan: every recorded compile
// command through the parallel executor, then the link command(s).  A
// structurally malformed plan is fatal.
func RunPlan(conf *config.Config) error {
	path := PlanFile(conf)

	buf, err := os.ReadFile(path)
	if err != nil {
		return util.FmtCcError("cannot read build plan \"%s\": %s", path,
			err.Error())
	}

	var plan Plan
	if err := json.Unmarshal(buf, &plan); err != nil {
		return util.FmtCcError("invalid build plan \"%s\": %s", path,
			err.Error())
	}

	cmds := make([]string, 0, len(plan.Compile))
	prettyCmds := make([]string, 0, len(plan.Compile))
	for _, entry := range plan.Compile {
		if len(entry) != 2 {
			return util.FmtCcError(
				"invalid build plan \"%s\": malformed compile entry", path)
		}
		cmds = append(cmds, entry[1])
		prettyCmds = append(prettyCmds, "CC: "+filepath.Base(entry[0]))
	}

	if err := ExecCmdsInParallel(conf, cmds, prettyCmds); err != nil {
		return err
	}

	for _, cmd := range strings.Split(plan.LinkCmd, "\n") {
		if cmd == "" {
			continue
		}
		if err := execLinkCmd(conf, cmd); err != nil {
			return err
		}
	}

	return nil
}
