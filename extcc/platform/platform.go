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

// Package platform is the catalog of operating systems and processors the
// driver can target.  It only records the properties command synthesis
// cares about: naming conventions for build artifacts and a few behavioral
// flags.
package platform

import (
	"runtime"
	"strings"
)

type OsId int

const (
	OsNone OsId = iota
	OsWindows
	OsDos
	OsLinux
	OsMacosx
	OsFreebsd
	OsNetbsd
	OsOpenbsd
	OsSolaris
	OsHaiku
	OsAndroid
	OsNintendoSwitch
	OsStandalone
)

type OsProps uint8

const (
	// Shared libraries on this OS require position independent code.
	PropNeedsPIC OsProps = 1 << iota
	// Executables carry an ".exe" style extension.
	PropExeExt
)

func (p OsProps) Has(flag OsProps) bool {
	return p&flag != 0
}

type OsInfo struct {
	Name      string
	ExeExt    string
	ScriptExt string
	DllFrmt   string
	Props     OsProps
}

// OS is indexed by OsId.
var OS = [...]OsInfo{
	OsNone:    {Name: "", ScriptExt: "sh", DllFrmt: "lib$1.so"},
	OsWindows: {Name: "windows", ExeExt: "exe", ScriptExt: "bat", DllFrmt: "$1.dll", Props: PropExeExt},
	OsDos:     {Name: "dos", ExeExt: "exe", ScriptExt: "bat", DllFrmt: "$1.dll", Props: PropExeExt},
	OsLinux:   {Name: "linux", ScriptExt: "sh", DllFrmt: "lib$1.so", Props: PropNeedsPIC},
	OsMacosx:  {Name: "macosx", ScriptExt: "sh", DllFrmt: "lib$1.dylib", Props: PropNeedsPIC},
	OsFreebsd: {Name: "freebsd", ScriptExt: "sh", DllFrmt: "lib$1.so", Props: PropNeedsPIC},
	OsNetbsd:  {Name: "netbsd", ScriptExt: "sh", DllFrmt: "lib$1.so", Props: PropNeedsPIC},
	OsOpenbsd: {Name: "openbsd", ScriptExt: "sh", DllFrmt: "lib$1.so", Props: PropNeedsPIC},
	OsSolaris: {Name: "solaris", ScriptExt: "sh", DllFrmt: "lib$1.so", Props: PropNeedsPIC},
	OsHaiku:   {Name: "haiku", ScriptExt: "sh", DllFrmt: "lib$1.so", Props: PropNeedsPIC},
	OsAndroid: {Name: "android", ScriptExt: "sh", DllFrmt: "lib$1.so", Props: PropNeedsPIC},
	OsNintendoSwitch: {Name: "nintendoswitch", ScriptExt: "sh",
		DllFrmt: "lib$1.so", Props: PropNeedsPIC},
	OsStandalone: {Name: "standalone", ScriptExt: "sh", DllFrmt: "lib$1.so"},
}

// IsWindowsLike reports whether the OS belongs to the Windows/DOS family.
func IsWindowsLike(id OsId) bool {
	return id == OsWindows || id == OsDos
}

// OsFromName matches an OS by its catalog name, case-insensitively.  It
// returns OsNone when nothing matches.
func OsFromName(name string) OsId {
	for i, info := range OS {
		if i != 0 && strings.EqualFold(info.Name, name) {
			return OsId(i)
		}
	}

	return OsNone
}

type CpuId int

const (
	CpuNone CpuId = iota
	CpuI386
	CpuAmd64
	CpuArm
	CpuArm64
	CpuMips
	CpuPowerpc64
	CpuRiscv64
	CpuWasm32
)

type CpuInfo struct {
	Name string
}

// CPU is indexed by CpuId.
var CPU = [...]CpuInfo{
	CpuNone:      {Name: ""},
	CpuI386:      {Name: "i386"},
	CpuAmd64:     {Name: "amd64"},
	CpuArm:       {Name: "arm"},
	CpuArm64:     {Name: "arm64"},
	CpuMips:      {Name: "mips"},
	CpuPowerpc64: {Name: "powerpc64"},
	CpuRiscv64:   {Name: "riscv64"},
	CpuWasm32:    {Name: "wasm32"},
}

// CpuFromName matches a CPU by its catalog name, case-insensitively.  It
// returns CpuNone when nothing matches.
func CpuFromName(name string) CpuId {
	for i, info := range CPU {
		if i != 0 && strings.EqualFold(info.Name, name) {
			return CpuId(i)
		}
	}

	return CpuNone
}

// HostOs maps the running Go platform onto the catalog.
func HostOs() OsId {
	switch runtime.GOOS {
	case "windows":
		return OsWindows
	case "darwin":
		return OsMacosx
	case "freebsd":
		return OsFreebsd
	case "netbsd":
		return OsNetbsd
	case "openbsd":
		return OsOpenbsd
	case "solaris":
		return OsSolaris
	case "android":
		return OsAndroid
	default:
		return OsLinux
	}
}

// HostCpu maps the running Go architecture onto the catalog.
func HostCpu() CpuId {
	switch runtime.GOARCH {
	case "386":
		return CpuI386
	case "arm":
		return CpuArm
	case "arm64":
		return CpuArm64
	case "mips":
		return CpuMips
	case "ppc64", "ppc64le":
		return CpuPowerpc64
	case "riscv64":
		return CpuRiscv64
	default:
		return CpuAmd64
	}
}
