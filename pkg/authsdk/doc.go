/*
Package authsdk holds the wire types of the auth service and a small client
for it.

Handlers and the client share the same request, response and error types,
so a field renamed on one side is renamed on the other.

# Client

	c := authsdk.NewClient("http://localhost:8080")

	if _, err := c.Signup(ctx, authsdk.SignupRequest{Email: "a@x.com", Password: "pw", Name: "A"}); err != nil {
		return err
	}

	// Login stores the pair; later calls send it as headers.
	if _, err := c.Login(ctx, "a@x.com", "pw"); err != nil {
		return err
	}
	me, err := c.Me(ctx)

# Errors

Every error response has the body {"code","error","message"} and is
returned as *APIError. Compare against the predefined values:

	_, err := c.Login(ctx, "a@x.com", "wrong")
	if errors.Is(err, authsdk.ErrInvalidCredentials) {
		// 401 A001
	}
*/
package authsdk
