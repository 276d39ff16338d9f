package fakeengine

import (
	"encoding/json"
	"fmt"
	"os"
)

// EnvVar carries the JSON-encoded Behavior to a helper process.
const EnvVar = "UCISVC_FAKE_ENGINE"

// Main runs the fake engine on stdin/stdout when the process was launched as
// a helper, and returns false otherwise. Call it first thing in TestMain:
//
//	func TestMain(m *testing.M) {
//		if fakeengine.Main() {
//			return
//		}
//		os.Exit(m.Run())
//	}
func Main() bool {
	raw, ok := os.LookupEnv(EnvVar)
	if !ok {
		return false
	}

	var b Behavior
	if err := json.Unmarshal([]byte(raw), &b); err != nil {
		fmt.Fprintf(os.Stderr, "fakeengine: decode behavior: %v\n", err)
		os.Exit(2)
	}

	if err := Run(os.Stdin, os.Stdout, b); err != nil {
		fmt.Fprintf(os.Stderr, "fakeengine: %v\n", err)
		os.Exit(1)
	}

	os.Exit(0)

	return true
}

// Env returns the environment that makes a re-executed test binary behave as
// the fake engine. Pair it with os.Args[0] as the engine path.
func Env(b Behavior) map[string]string {
	data, err := json.Marshal(b)
	if err != nil {
		panic(fmt.Sprintf("fakeengine: encode behavior: %v", err))
	}

	return map[string]string{EnvVar: string(data)}
}
