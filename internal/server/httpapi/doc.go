// Package httpapi serves the dashboard's REST contract:
//
//	POST   {prefix}/auth/register   {name,email,password} -> 201 {accessToken,refreshToken}
//	POST   {prefix}/auth/login      {email,password}      -> 200 {accessToken,refreshToken}
//	POST   {prefix}/auth/refresh    {refreshToken}        -> 200 {accessToken,refreshToken?}
//	GET    {prefix}/users?page&limit&search               -> 200 {users,total}
//	POST   {prefix}/users                                 -> 201 user
//	GET    {prefix}/users/{id}                            -> 200 user
//	PATCH  {prefix}/users/{id}                            -> 200 user
//	DELETE {prefix}/users/{id}                            -> 204
//	GET    {prefix}/healthz                               -> 200 {status}
//
// /users routes require "Authorization: Bearer <access token>". Errors use
// the netx envelope {"error":{"code","message"}}.
package httpapi
