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
	"path/filepath"
	"runtime"
	"testing"

	"github.com/extcc/extcc/util"
)

func skipWithoutShellTools(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("POSIX shell tools required")
	}
}

func TestExecCmdsInParallel(t *testing.T) {
	skipWithoutShellTools(t)

	conf := testConf(t)
	conf.NumProcessors = 4

	dir := t.TempDir()
	cmds := []string{
		"touch " + filepath.Join(dir, "a"),
		"touch " + filepath.Join(dir, "b"),
		"touch " + filepath.Join(dir, "c"),
	}

	if err := ExecCmdsInParallel(conf, cmds, nil); err != nil {
		t.Fatalf("ExecCmdsInParallel failed: %s", err.Error())
	}

	for _, f := range []string{"a", "b", "c"} {
		if util.NodeNotExist(filepath.Join(dir, f)) {
			t.Fatalf("command for %s did not run", f)
		}
	}
}

func TestExecCmdsInParallelFailure(t *testing.T) {
	skipWithoutShellTools(t)

	conf := testConf(t)
	conf.NumProcessors = 2

	cmds := []string{"true", "false", "true"}
	if err := ExecCmdsInParallel(conf, cmds, nil); err == nil {
		t.Fatal("a failing command must fail the build")
	}
}

// Sequential mode stops at the first failure: commands after it never run.
func TestExecCmdsSequentialStopsOnFailure(t *testing.T) {
	skipWithoutShellTools(t)

	conf := testConf(t)
	conf.NumProcessors = 1

	dir := t.TempDir()
	after := filepath.Join(dir, "after")
	cmds := []string{"false", "touch " + after}

	if err := ExecCmdsInParallel(conf, cmds, nil); err == nil {
		t.Fatal("expected failure")
	}
	if util.NodeExist(after) {
		t.Fatal("commands after a sequential failure must not run")
	}
}

func TestExecCmdsEmpty(t *testing.T) {
	conf := testConf(t)
	if err := ExecCmdsInParallel(conf, nil, nil); err != nil {
		t.Fatalf("empty command list must succeed: %s", err.Error())
	}
}

func TestExecCmdsBadCommandString(t *testing.T) {
	conf := testConf(t)
	conf.NumProcessors = 1

	if err := ExecCmdsInParallel(conf,
		[]string{"cc 'unterminated"}, nil); err == nil {

		t.Fatal("an unparseable command string must fail")
	}
}
