package publish

import (
	"github.com/sgaunet/auto-release/pkg/config"
	"github.com/sgaunet/auto-release/pkg/failure"
	"github.com/sgaunet/auto-release/pkg/runner"
)

// Guard backs the manifest's prepublishOnly hook. It refuses a registry
// publish that was not started by the pipeline.
func Guard(rt config.Runtime) error {
	if rt.Getenv(runner.PublishGuardEnv) == "" {
		return failure.ExpectedCode("Run yarn publish:npm instead", failure.CodeManualPublish)
	}
	return nil
}
