package core

// Version is the boxmap version.
var Version = "0.1.0"

// GitSHA is the git checksum for the build, assigned by the linker.
var GitSHA = "0000000"

// DevMode puts the server into dev mode, enabling the MASSINSERT command.
var DevMode = false

// ShowDebugMessages allows for log.Debug to print to console.
var ShowDebugMessages = false

// ProtectedMode is the startup protected-mode override. Anything other
// than "no" defers to the config file.
var ProtectedMode = "no"
