package main

import _ "embed"

// trayIcon Windows 托盘按 IMAGE_ICON 加载，必须是 .ico
//
//go:embed build/windows/icon.ico
var trayIcon []byte
