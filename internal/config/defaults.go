package config

func boolPtr(b bool) *bool { return &b }

func DefaultConfig() Config {
	return Config{
		Tool: ToolConfig{
			Command:          "kotlinc",
			Fallbacks:        []string{"kotlinc-jvm"},
			ScriptFlag:       "-script",
			NotFoundExitCode: 127,
		},
		Session: SessionConfig{
			Mode:           ModeWarm,
			WorkDir:        ".",
			ScriptName:     "script.kts",
			Channel:        ChannelProcFD,
			IsolateRuns:    boolPtr(true),
			PollIntervalMS: 100,
		},
		UI: UIConfig{
			Theme:           "default",
			PollIntervalMS:  100,
			ShowLineNumbers: boolPtr(true),
			ClearOnRun:      boolPtr(true),
		},
		Log: LogConfig{
			Level: "info",
			File:  ".kws/kws.log",
		},
		Update: UpdateConfig{
			Repo: "justinpbarnett/kws",
		},
	}
}
