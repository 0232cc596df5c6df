// Package auth provides authentication and organization-scoped authorization
// for the platform.
//
// # Authentication Providers
//
// LocalProvider handles traditional username/password authentication against
// the local database with secure Argon2id password hashing.
//
// OIDCProvider implements OAuth2/OIDC flows for authentication with external
// identity providers like Google, Okta, Keycloak, and Discord.
//
// # Authorization System
//
// Authorization is organization-scoped. Permissions come from a closed,
// code-defined catalog (permissions.go). Each organization defines named
// roles bundling catalog permissions, and memberships link users to an
// organization with at most one role. A user's standing in an organization
// resolves to exactly one of three results (resolve.go):
//
//   - Owner: the organization's designated owner; holds the full catalog
//     unconditionally, bypassing role evaluation entirely
//   - Member: holds a membership, with either a role's permission set or,
//     without a role, the empty default set
//   - NotAMember: denied every organization-scoped permission
//
// Resources that record a creator (events, comments, reviews) carry a second,
// parallel authorization path: the creator always passes ownership checks for
// that instance (ownership.go). Routes declare how the two paths compose.
//
// # Permission Checking
//
// The Service type is the single permission evaluator:
//   - HasPermission: decide one permission for one user in one organization
//   - HasAnyPermission: decide a set of alternative permissions
//   - EffectivePermissions: the user's full effective set in an organization
//   - ValidateStoredPermissions: startup guard against catalog drift
//
// # Request Gate
//
// Fiber middleware stages compose the per-request authorization pipeline
// (middleware.go). Each stage is discrete and reorderable per route:
//
//	app.Delete("/orgs/:orgID/events/:eventID",
//	    auth.RequireSession(db),
//	    auth.ResolveOrganization(db),
//	    auth.RequirePermissionOrCreator(authService, auth.PermManageEvents, loadEvent),
//	    handler,
//	)
//
// Failures terminate the request: 401 without a valid session, 404 for an
// unknown organization, 403 on denial (with a generic message), and 503 when
// the decision itself could not be made. Infrastructure failures are never
// converted into denials.
package auth
