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
	"strings"

	"github.com/extcc/extcc/extcc/config"
)

// CFileSpecificOptions assembles the compile option string for one
// translation unit: the global options, the per-file overrides, the
// command-line options (folded in with substring de-duplication), the
// debug/speed/size selection, and the module's ".always" variable.  The
// per-module config variables "<name>.debug", "<name>.speed", "<name>.size"
// and "<name>.always" override the descriptor defaults.
func CFileSpecificOptions(conf *config.Config, nimname string,
	fullPath string) string {

	d := Get(conf.CCompiler)

	options := conf.CompileOptions
	if opts, ok := conf.CFileSpecificOptions[fullPath]; ok {
		config.AddOpt(&options, opts)
	}
	for _, option := range conf.CompileOptionsCmd {
		if strings.Index(options, option) < 0 {
			config.AddOpt(&options, option)
		}
	}

	if conf.GlobalOptions.Has(config.OptCDebug) {
		if key := nimname + ".debug"; conf.ExistsConfigVar(key) {
			config.AddOpt(&options, conf.GetConfigVar(key))
		} else {
			config.AddOpt(&options, d.Debug)
		}
	}
	if conf.Options.Has(config.OptOptimizeSpeed) {
		if key := nimname + ".speed"; conf.ExistsConfigVar(key) {
			config.AddOpt(&options, conf.GetConfigVar(key))
		} else {
			config.AddOpt(&options, d.OptSpeed)
		}
	} else if conf.Options.Has(config.OptOptimizeSize) {
		if key := nimname + ".size"; conf.ExistsConfigVar(key) {
			config.AddOpt(&options, conf.GetConfigVar(key))
		} else {
			config.AddOpt(&options, d.OptSize)
		}
	}

	if key := nimname + ".always"; conf.ExistsConfigVar(key) {
		config.AddOpt(&options, conf.GetConfigVar(key))
	}

	return options
}

// CompileOptions is the file-independent rendering of the option string;
// the mapping writer records it.
func CompileOptions(conf *config.Config) string {
	return CFileSpecificOptions(conf, conf.ProjectName, conf.ProjectName)
}

// LinkOptions assembles the file-independent link option string: the
// global link options, the command-line link options (substring
// de-duplicated), and the library/directory flag fragments for every
// linked library and search path.
func LinkOptions(conf *config.Config) string {
	d := Get(conf.CCompiler)

	options := conf.LinkOptions
	for _, option := range conf.LinkOptionsCmd {
		if strings.Index(options, option) < 0 {
			config.AddOpt(&options, option)
		}
	}

	for _, lib := range conf.CLinkedLibs {
		options += Expand1(d.LinkLibCmd, quoteShell(lib))
	}
	for _, dir := range conf.CLibs {
		options += d.LinkDirCmd + quoteShell(dir)
	}

	return options
}
