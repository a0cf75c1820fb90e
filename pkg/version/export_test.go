package version

var RevisionFromSettings = revision
