package urls

// AutoDev is the home of the VIN decode service.
const AutoDev = "https://auto.dev"

// AutoDevAPIKeys is where users create the API key the decoder needs.
const AutoDevAPIKeys = "https://auto.dev/dashboard"

// Repository is the project source and issue tracker.
const Repository = "github.com/muurk/vininsight"
