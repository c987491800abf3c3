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

package util

import (
	"bytes"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"os/exec"
	"runtime"
	"strings"

	"github.com/kballard/go-shellquote"
	"github.com/otiai10/copy"
	"github.com/shirou/gopsutil/cpu"
	log "github.com/sirupsen/logrus"
)

var Verbosity int
var PrintShellCmds bool
var logFile *os.File

type CcError struct {
	Parent     error
	Text       string
	StackTrace []byte
}

const (
	VERBOSITY_SILENT  = 0
	VERBOSITY_QUIET   = 1
	VERBOSITY_DEFAULT = 2
	VERBOSITY_VERBOSE = 3
)

func (se *CcError) Error() string {
	return se.Text
}

func NewCcError(msg string) *CcError {
	err := &CcError{
		Text:       msg,
		StackTrace: make([]byte, 65536),
	}

	stackLen := runtime.Stack(err.StackTrace, true)
	err.StackTrace = err.StackTrace[:stackLen]

	return err
}

func FmtCcError(format string, args ...interface{}) *CcError {
	return NewCcError(fmt.Sprintf(format, args...))
}

func ChildCcError(parent error) *CcError {
	for {
		ccErr, ok := parent.(*CcError)
		if !ok || ccErr == nil || ccErr.Parent == nil {
			break
		}
		parent = ccErr.Parent
	}

	err := NewCcError(parent.Error())
	err.Parent = parent
	return err
}

// Print Silent, Quiet and Verbose aware status messages to the given file.
func WriteMessage(f *os.File, level int, message string,
	args ...interface{}) {

	if Verbosity >= level {
		str := fmt.Sprintf(message, args...)
		f.WriteString(str)
		f.Sync()

		if logFile != nil {
			logFile.WriteString(str)
		}
	}
}

// Print Silent, Quiet and Verbose aware status messages to stdout.
func StatusMessage(level int, message string, args ...interface{}) {
	WriteMessage(os.Stdout, level, message, args...)
}

// Print Silent, Quiet and Verbose aware status messages to stderr.
func ErrorMessage(level int, message string, args ...interface{}) {
	WriteMessage(os.Stderr, level, message, args...)
}

func NodeExist(path string) bool {
	if _, err := os.Stat(path); err == nil {
		return true
	} else {
		return false
	}
}

// Check whether the node (either dir or file) specified by path does not exist
func NodeNotExist(path string) bool {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return true
	} else {
		return false
	}
}

type logFormatter struct{}

func (f *logFormatter) Format(entry *log.Entry) ([]byte, error) {
	// 2016/03/16 12:50:47.000 [DEBUG] message

	b := &bytes.Buffer{}

	b.WriteString(entry.Time.Format("2006/01/02 15:04:05.000 "))
	b.WriteString("[" + strings.ToUpper(entry.Level.String()) + "] ")
	b.WriteString(entry.Message)
	b.WriteByte('\n')

	return b.Bytes(), nil
}

func initLog(level log.Level, logFilename string) error {
	log.SetLevel(level)

	var writer io.Writer
	if logFilename == "" {
		writer = os.Stderr
	} else {
		var err error
		logFile, err = os.Create(logFilename)
		if err != nil {
			return NewCcError(err.Error())
		}

		writer = io.MultiWriter(os.Stderr, logFile)
	}

	log.SetOutput(writer)
	log.SetFormatter(&logFormatter{})

	return nil
}

// Initialize the util module
func Init(logLevel log.Level, logFile string, verbosity int) error {
	// Configure logging twice.  First just configure the filter for stderr;
	// second configure the logfile if there is one.  This needs to happen in
	// two steps so that the log level is configured prior to the attempt to
	// open the log file.  The correct log level needs to be applied to file
	// error messages.
	if err := initLog(logLevel, ""); err != nil {
		return err
	}
	if logFile != "" {
		if err := initLog(logLevel, logFile); err != nil {
			return err
		}
	}

	Verbosity = verbosity
	PrintShellCmds = false

	return nil
}

func LogShellCmd(cmdStrs []string) {
	log.Debugf("%s", strings.Join(cmdStrs, " "))

	if PrintShellCmds {
		StatusMessage(VERBOSITY_DEFAULT, "%s\n", strings.Join(cmdStrs, " "))
	}
}

// Execute the specified process and block until it completes.  Additionally,
// the amount of combined stdout+stderr output to be logged to the debug log
// can be restricted to a maximum number of characters.
//
// @param cmdStrs               The "argv" strings of the command to execute.
// @param logCmd                Whether to log the command being executed.
// @param maxDbgOutputChrs      The maximum number of combined stdout+stderr
//                                  characters to write to the debug log.
//                                  Specify -1 for no limit; 0 for no output.
//
// @return []byte               Combined stdout and stderr output of process.
// @return error                CcError on failure.  Use IsExit() to
//                                  determine if the command failed to execute
//                                  or if it just returned a non-zero exit
//                                  status.
func ShellCommandLimitDbgOutput(cmdStrs []string, logCmd bool,
	maxDbgOutputChrs int) ([]byte, error) {

	if logCmd {
		LogShellCmd(cmdStrs)
	}

	name := cmdStrs[0]
	args := cmdStrs[1:]
	cmd := exec.Command(name, args...)

	o, err := cmd.CombinedOutput()

	if maxDbgOutputChrs < 0 || len(o) <= maxDbgOutputChrs {
		dbgStr := string(o)
		log.Debugf("o=%s", dbgStr)
	} else if maxDbgOutputChrs != 0 {
		dbgStr := string(o[:maxDbgOutputChrs]) + "[...]"
		log.Debugf("o=%s", dbgStr)
	}

	if err != nil {
		err = ChildCcError(err)
		log.Debugf("err=%s", err.Error())
		if len(o) > 0 {
			err.(*CcError).Text = string(o)
		}
		return o, err
	} else {
		return o, nil
	}
}

// Execute the specified process and block until it completes.
//
// @param cmdStrs               The "argv" strings of the command to execute.
//
// @return []byte               Combined stdout and stderr output of process.
// @return error                CcError on failure.
func ShellCommand(cmdStrs []string) ([]byte, error) {
	return ShellCommandLimitDbgOutput(cmdStrs, true, -1)
}

// RunCommandLine executes a fully assembled command string.  The string is
// tokenized with shell quoting rules; the first token is the executable.
func RunCommandLine(cmdLine string) ([]byte, error) {
	toks, err := shellquote.Split(cmdLine)
	if err != nil {
		return nil, FmtCcError(
			"invalid command string: \"%s\": %s", cmdLine, err.Error())
	}
	if len(toks) == 0 {
		return nil, FmtCcError("empty command string")
	}

	return ShellCommand(toks)
}

// ExitStatus extracts the child exit code from an error returned by
// ShellCommand.  It returns -1 if the command failed to launch.
func ExitStatus(err error) int {
	ccErr, ok := err.(*CcError)
	if ok {
		err = ccErr.Parent
	}

	exitErr, ok := err.(*exec.ExitError)
	if !ok {
		return -1
	}
	return exitErr.ExitCode()
}

// Indicates whether the provided error is of type *exec.ExitError (raised when
// a child process exits with a non-zero status code).
func IsExit(err error) bool {
	ccErr, ok := err.(*CcError)
	if ok {
		err = ccErr.Parent
	}

	_, ok = err.(*exec.ExitError)
	return ok
}

func IsNotExist(err error) bool {
	ccErr, ok := err.(*CcError)
	if ok {
		err = ccErr.Parent
	}

	return os.IsNotExist(err)
}

// CopyFile copies a single file, preserving its permission bits.
func CopyFile(srcFile string, dstFile string) error {
	if err := copy.Copy(srcFile, dstFile); err != nil {
		return ChildCcError(err)
	}

	return nil
}

func CopyDir(srcDirStr, dstDirStr string) error {
	opt := copy.Options{
		OnSymlink: func(src string) copy.SymlinkAction {
			return copy.Shallow
		},
	}

	err := copy.Copy(srcDirStr, dstDirStr, opt)

	if err != nil {
		return ChildCcError(err)
	}

	return nil
}

// Removes all duplicate strings from the specified array, while preserving
// order.
func UniqueStrings(elems []string) []string {
	set := make(map[string]bool)
	result := make([]string, 0)

	for _, elem := range elems {
		if !set[elem] {
			result = append(result, elem)
			set[elem] = true
		}
	}

	return result
}

// NumProcessors returns the number of logical CPUs available for running
// external compiler processes.
func NumProcessors() int {
	n, err := cpu.Counts(true)
	if err != nil || n < 1 {
		return runtime.NumCPU()
	}

	return n
}

// Sha1OfBytes returns the lowercase hex SHA-1 digest of the given bytes.
// This is a content hash, not a security primitive.
func Sha1OfBytes(data []byte) string {
	sum := sha1.Sum(data)
	return hex.EncodeToString(sum[:])
}

// Sha1OfFile returns the lowercase hex SHA-1 digest of a file's contents.
func Sha1OfFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", ChildCcError(err)
	}
	defer f.Close()

	h := sha1.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", ChildCcError(err)
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}
