package client

// ServiceName is the fully qualified gRPC service exposed by the backend.
const ServiceName = "gophnotes.v1.NotesService"

// Full method names, as passed to grpc.ClientConn.Invoke.
const (
	MethodPing         = "/" + ServiceName + "/Ping"
	MethodRegister     = "/" + ServiceName + "/Register"
	MethodGetSalt      = "/" + ServiceName + "/GetSalt"
	MethodLogin        = "/" + ServiceName + "/Login"
	MethodRefreshToken = "/" + ServiceName + "/RefreshToken"
	MethodLogout       = "/" + ServiceName + "/Logout"
	MethodListNotes    = "/" + ServiceName + "/ListNotes"
	MethodCreateNote   = "/" + ServiceName + "/CreateNote"
	MethodDeleteNote   = "/" + ServiceName + "/DeleteNote"
)
