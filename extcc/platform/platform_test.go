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

package platform_test

import (
	"testing"

	"github.com/extcc/extcc/extcc/platform"
)

func TestOsFromName(t *testing.T) {
	if platform.OsFromName("Windows") != platform.OsWindows {
		t.Fatal("windows lookup failed")
	}
	if platform.OsFromName("macosx") != platform.OsMacosx {
		t.Fatal("macosx lookup failed")
	}
	if platform.OsFromName("beos") != platform.OsNone {
		t.Fatal("unknown OS should map to the sentinel")
	}
}

func TestCpuFromName(t *testing.T) {
	if platform.CpuFromName("AMD64") != platform.CpuAmd64 {
		t.Fatal("amd64 lookup failed")
	}
	if platform.CpuFromName("z80") != platform.CpuNone {
		t.Fatal("unknown CPU should map to the sentinel")
	}
}

func TestWindowsFamily(t *testing.T) {
	if !platform.IsWindowsLike(platform.OsWindows) ||
		!platform.IsWindowsLike(platform.OsDos) {

		t.Fatal("windows family wrong")
	}
	if platform.IsWindowsLike(platform.OsLinux) {
		t.Fatal("linux is not windows-like")
	}
}

func TestOsProperties(t *testing.T) {
	if !platform.OS[platform.OsLinux].Props.Has(platform.PropNeedsPIC) {
		t.Fatal("linux shared objects need PIC")
	}
	if platform.OS[platform.OsWindows].Props.Has(platform.PropNeedsPIC) {
		t.Fatal("windows DLLs do not need PIC")
	}
	if platform.OS[platform.OsWindows].ScriptExt != "bat" {
		t.Fatal("windows scripts are .bat")
	}
	if platform.OS[platform.OsLinux].DllFrmt != "lib$1.so" {
		t.Fatal("linux DLL naming wrong")
	}
}
