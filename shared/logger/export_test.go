package logger

var SetLogLevelTo = setLogLevel
