/***************************************************************
 *
 * Copyright (C) 2025, The rcpilot Authors
 *
 * Licensed under the Apache License, Version 2.0 (the "License"); you
 * may not use this file except in compliance with the License.  You may
 * obtain a copy of the License at
 *
 *    http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 *
 ***************************************************************/

// Package param exposes typed accessors for every configuration knob the
// client reads.  All values live in viper; the accessors keep call sites
// free of raw string keys.
package param

import (
	"time"

	"github.com/spf13/viper"
)

type StringParam struct {
	name string
}

func (p StringParam) GetName() string {
	return p.name
}

func (p StringParam) GetString() string {
	return viper.GetString(p.name)
}

type IntParam struct {
	name string
}

func (p IntParam) GetName() string {
	return p.name
}

func (p IntParam) GetInt() int {
	return viper.GetInt(p.name)
}

type BoolParam struct {
	name string
}

func (p BoolParam) GetName() string {
	return p.name
}

func (p BoolParam) GetBool() bool {
	return viper.GetBool(p.name)
}

type DurationParam struct {
	name string
}

func (p DurationParam) GetName() string {
	return p.name
}

func (p DurationParam) GetDuration() time.Duration {
	return viper.GetDuration(p.name)
}

var (
	Daemon_Command             = StringParam{"Daemon.Command"}
	Daemon_Address             = StringParam{"Daemon.Address"}
	Daemon_Port                = IntParam{"Daemon.Port"}
	Daemon_AuthEnabled         = BoolParam{"Daemon.AuthEnabled"}
	Daemon_Username            = StringParam{"Daemon.Username"}
	Daemon_Password            = StringParam{"Daemon.Password"}
	Daemon_StartupTimeout      = DurationParam{"Daemon.StartupTimeout"}
	Daemon_StartupPollInterval = DurationParam{"Daemon.StartupPollInterval"}
	Daemon_ShutdownGrace       = DurationParam{"Daemon.ShutdownGrace"}

	Client_RequestTimeout   = DurationParam{"Client.RequestTimeout"}
	Client_StopPollInterval = DurationParam{"Client.StopPollInterval"}
	Client_StopMaxAttempts  = IntParam{"Client.StopMaxAttempts"}
	Client_RemotesCacheTTL  = DurationParam{"Client.RemotesCacheTTL"}

	Logging_Level       = StringParam{"Logging.Level"}
	Logging_LogLocation = StringParam{"Logging.LogLocation"}

	Transport_DialerTimeout         = DurationParam{"Transport.DialerTimeout"}
	Transport_DialerKeepAlive       = DurationParam{"Transport.DialerKeepAlive"}
	Transport_MaxIdleConns          = IntParam{"Transport.MaxIdleConns"}
	Transport_IdleConnTimeout       = DurationParam{"Transport.IdleConnTimeout"}
	Transport_TLSHandshakeTimeout   = DurationParam{"Transport.TLSHandshakeTimeout"}
	Transport_ExpectContinueTimeout = DurationParam{"Transport.ExpectContinueTimeout"}
	Transport_ResponseHeaderTimeout = DurationParam{"Transport.ResponseHeaderTimeout"}

	TLSSkipVerify = BoolParam{"TLSSkipVerify"}
)
