package auth

import "net/http"

// Permission predicates mirror the three access tiers of the API. They are
// stateless functions over (identity, method, optional object author).

func safeMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return true
	}
	return false
}

// AdminOrStaff gates the user-management surface: staff, or an
// authenticated admin.
func AdminOrStaff(id Identity) bool {
	return id.IsStaff || (id.Authenticated && id.Admin())
}

// AdminOrReadOnly allows reads for everyone and writes only for
// authenticated admins.
func AdminOrReadOnly(id Identity, method string) bool {
	return safeMethod(method) || (id.Authenticated && id.Admin())
}

// AdminModeratorAuthorOrReadOnly is the request-level half of the
// review/comment tier: reads are public, writes need authentication.
func AdminModeratorAuthorOrReadOnly(id Identity, method string) bool {
	return safeMethod(method) || id.Authenticated
}

// CanMutateObject is the object-level half: the author, a moderator or an
// admin may change or delete an existing review/comment.
func CanMutateObject(id Identity, authorID string) bool {
	if !id.Authenticated {
		return false
	}
	return id.UserID == authorID || id.Moderator() || id.Admin()
}
