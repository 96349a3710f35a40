// Package accounts provides the user and address management core for a
// registration/authentication backend: credential verification, JWT
// issuance and validation, and a stateless password-reset token flow.
//
// Authentication:
//   - Auther verifies an email/password pair against the Users repository
//     through bcrypt and asks the TokenService for a signed session token.
//     Missing accounts and password mismatches are indistinguishable to
//     callers; both surface as ErrInvalidCredentials.
//
// Password reset:
//   - ResetTokenCodec encodes base64(timestamp ":" random ":" email)
//     recovery tokens with a fixed five minute validity window. No server
//     side state backs a token; expiry is purely time based.
//   - PasswordResetFlow drives request -> validate -> change-password over
//     the codec, the Users repository, and a Notifier collaborator that
//     delivers the token to the account's email address.
//
// Persistence:
//   - Users and Addresses are Bun repositories aggregated behind a
//     RepositoryManager with transactional helpers. Registration and
//     profile commands run their writes inside RunInTx.
package accounts
