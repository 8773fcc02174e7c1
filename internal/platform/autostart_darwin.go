//go:build darwin

package platform

import (
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

func newService() Service {
	return loginItemFile{path: launchAgentPath, content: buildLaunchAgentPlist}
}

// launchAgentPath returns ~/Library/LaunchAgents/<label>.plist.
func launchAgentPath(appName string) (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(homeDir, "Library", "LaunchAgents", launchAgentLabel(appName)+".plist"), nil
}

func launchAgentLabel(appName string) string {
	return "com.tomatobar." + loginItemName(appName)
}

func buildLaunchAgentPlist(appName, execPath string) string {
	var plist strings.Builder
	plist.WriteString(`<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE plist PUBLIC "-//Apple//DTD PLIST 1.0//EN" "http://www.apple.com/DTDs/PropertyList-1.0.dtd">
<plist version="1.0">
<dict>
`)
	writePlistString(&plist, "Label", launchAgentLabel(appName))
	plist.WriteString("\t<key>ProgramArguments</key>\n\t<array>\n\t\t<string>")
	_ = xml.EscapeText(&plist, []byte(execPath))
	plist.WriteString("</string>\n\t</array>\n")
	plist.WriteString("\t<key>RunAtLoad</key>\n\t<true/>\n")
	plist.WriteString("\t<key>KeepAlive</key>\n\t<false/>\n")
	writePlistString(&plist, "ProcessType", "Interactive")
	plist.WriteString("</dict>\n</plist>\n")
	return plist.String()
}

func writePlistString(plist *strings.Builder, key, value string) {
	plist.WriteString("\t<key>" + key + "</key>\n\t<string>")
	_ = xml.EscapeText(plist, []byte(value))
	plist.WriteString("</string>\n")
}
