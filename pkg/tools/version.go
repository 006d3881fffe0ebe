package tools

import (
	"context"
	"log/slog"
	"runtime/debug"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/openatlas/opendata/pkg/version"
)

// VersionInfo represents version information for the service
type VersionInfo struct {
	Version     string `json:"version"`
	GoVersion   string `json:"go_version,omitempty"`
	BuildTime   string `json:"build_time,omitempty"`
	VCSRevision string `json:"vcs_revision,omitempty"`
}

// GetVersionTool returns a tool definition for retrieving version information
func GetVersionTool() mcp.Tool {
	return mcp.NewTool("get_version",
		mcp.WithDescription("Get the version and build information of the open-data MCP service"),
	)
}

// HandleGetVersion implements version information retrieval
func HandleGetVersion(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	logger := slog.Default().With("tool", "get_version")

	info := VersionInfo{
		Version:     version.BuildVersion,
		VCSRevision: version.BuildCommit,
		BuildTime:   version.BuildDate,
	}

	if bi, ok := debug.ReadBuildInfo(); ok {
		info.GoVersion = bi.GoVersion
		for _, setting := range bi.Settings {
			switch setting.Key {
			case "vcs.revision":
				if info.VCSRevision == "" || info.VCSRevision == "unknown" {
					info.VCSRevision = setting.Value
				}
			case "vcs.time":
				if info.BuildTime == "" || info.BuildTime == "unknown" {
					info.BuildTime = setting.Value
				}
			}
		}
	}

	logger.Debug("version requested", "version", info.Version)
	return JSONResult(info)
}
