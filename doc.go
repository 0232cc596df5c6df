// Package main provides the entry point for the GuildPoint community platform
// backend. It initializes and runs a web server using the Fiber framework that
// lets users create organizations, define roles with catalog permissions, and
// manage members, events, comments and reviews through a REST API. The
// application uses gorm for data persistence and resolves every
// organization-scoped request through a three-way membership check with an
// owner bypass and a creator-ownership fallback.
package main
