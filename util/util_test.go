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

package util_test

import (
	"os"
	"path/filepath"
	"reflect"
	"runtime"
	"sync/atomic"
	"testing"

	"github.com/extcc/extcc/util"
)

func TestSha1OfBytes(t *testing.T) {
	// Well-known digest of the empty input.
	if got := util.Sha1OfBytes(nil); got !=
		"da39a3ee5e6b4b0d3255bfef95601890afd80709" {

		t.Fatalf("Sha1OfBytes(nil) = %s", got)
	}
}

func TestSha1OfFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "f")
	if err := os.WriteFile(path, []byte("abc"), 0644); err != nil {
		t.Fatal(err)
	}

	got, err := util.Sha1OfFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if got != "a9993e364706816aba3e25717850c26c9cd0d89d" {
		t.Fatalf("Sha1OfFile = %s", got)
	}

	if _, err := util.Sha1OfFile(path + ".nope"); err == nil {
		t.Fatal("hashing a missing file must fail")
	}
}

func TestUniqueStrings(t *testing.T) {
	got := util.UniqueStrings([]string{"a", "b", "a", "c", "b"})
	if !reflect.DeepEqual(got, []string{"a", "b", "c"}) {
		t.Fatalf("UniqueStrings = %v", got)
	}
}

func TestRunCommandLine(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("POSIX shell tools required")
	}

	out, err := util.RunCommandLine("echo hello world")
	if err != nil {
		t.Fatalf("RunCommandLine failed: %s", err.Error())
	}
	if string(out) != "hello world\n" {
		t.Fatalf("output = %q", out)
	}

	// Quoted arguments survive tokenization.
	out, err = util.RunCommandLine("echo 'one two'")
	if err != nil {
		t.Fatal(err)
	}
	if string(out) != "one two\n" {
		t.Fatalf("output = %q", out)
	}

	if _, err := util.RunCommandLine("echo 'unterminated"); err == nil {
		t.Fatal("bad quoting must fail")
	}
	if _, err := util.RunCommandLine(""); err == nil {
		t.Fatal("an empty command must fail")
	}
}

func TestIsExit(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("POSIX shell tools required")
	}

	_, err := util.RunCommandLine("false")
	if err == nil {
		t.Fatal("false must fail")
	}
	if !util.IsExit(err) {
		t.Fatal("a nonzero exit must be recognized as such")
	}
	if util.ExitStatus(err) != 1 {
		t.Fatalf("ExitStatus = %d", util.ExitStatus(err))
	}

	_, err = util.RunCommandLine("/no/such/binary")
	if err == nil {
		t.Fatal("a missing binary must fail")
	}
	if util.IsExit(err) {
		t.Fatal("a launch failure is not an exit failure")
	}
	if util.ExitStatus(err) != -1 {
		t.Fatalf("ExitStatus = %d", util.ExitStatus(err))
	}
}

func TestCopyFilePreservesMode(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src")
	dst := filepath.Join(dir, "dst")

	if err := os.WriteFile(src, []byte("bin"), 0755); err != nil {
		t.Fatal(err)
	}
	if err := util.CopyFile(src, dst); err != nil {
		t.Fatalf("CopyFile failed: %s", err.Error())
	}

	info, err := os.Stat(dst)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode()&0100 == 0 {
		t.Fatal("executable bit lost in copy")
	}

	buf, err := os.ReadFile(dst)
	if err != nil {
		t.Fatal(err)
	}
	if string(buf) != "bin" {
		t.Fatalf("content lost in copy: %q", buf)
	}
}

func TestBatchIndices(t *testing.T) {
	var sum int64

	err := util.BatchIndices(0, 100, 8, func(idx int, thread int) error {
		atomic.AddInt64(&sum, int64(idx))
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if sum != 4950 {
		t.Fatalf("sum = %d", sum)
	}
}

func TestBatchIndicesError(t *testing.T) {
	err := util.BatchIndices(0, 1000, 4, func(idx int, thread int) error {
		if idx == 3 {
			return util.NewCcError("boom")
		}
		return nil
	})

	if err == nil || err.Error() != "boom" {
		t.Fatalf("err = %v", err)
	}
}

func TestNumProcessors(t *testing.T) {
	if util.NumProcessors() < 1 {
		t.Fatal("processor count must be positive")
	}
}
