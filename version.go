package atlas

// Version is the atlas release version.
const Version = "0.1.0"
