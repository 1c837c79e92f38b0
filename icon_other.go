//go:build !windows

package main

// trayIcon macOS 与 Linux 托盘直接使用 PNG
var trayIcon = appIcon
