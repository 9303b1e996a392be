package grpc

import (
	"context"

	"github.com/BijjaSagar/vashihat-nama/internal/server/models"
	"google.golang.org/grpc"
)

const ServiceName = "vasihat.v1.VaultService"

// FullMethod returns the gRPC path of method, e.g. "/vasihat.v1.VaultService/CheckIn".
func FullMethod(method string) string { return "/" + ServiceName + "/" + method }

// unary adapts a typed handler method to a grpc.MethodDesc, running it
// through the server's interceptor chain.
func unary[Req, Resp any](name string, fn func(*GRPCServer, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			s := srv.(*GRPCServer)
			if interceptor == nil {
				return fn(s, ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: FullMethod(name)}
			return interceptor(ctx, in, info, func(ctx context.Context, req any) (any, error) {
				return fn(s, ctx, req.(*Req))
			})
		},
	}
}

// vaultServiceServer is checked by grpc.Server.RegisterService against the
// registered implementation.
type vaultServiceServer interface {
	CheckIn(context.Context, *CheckInRequest) (*HeartbeatStatusResponse, error)
	GetSecurityScore(context.Context, *Empty) (*models.SecurityScore, error)
}

var serviceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*vaultServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		// public
		unary("RequestOTP", (*GRPCServer).RequestOTP),
		unary("VerifyOTP", (*GRPCServer).VerifyOTP),
		unary("Register", (*GRPCServer).Register),
		unary("RefreshToken", (*GRPCServer).RefreshToken),
		unary("RequestNomineeCode", (*GRPCServer).RequestNomineeCode),
		unary("VerifyNomineeCode", (*GRPCServer).VerifyNomineeCode),

		// owner
		unary("GetProfile", (*GRPCServer).GetProfile),
		unary("UpdateProfile", (*GRPCServer).UpdateProfile),
		unary("CheckIn", (*GRPCServer).CheckIn),
		unary("GetHeartbeatStatus", (*GRPCServer).GetHeartbeatStatus),
		unary("UpdateHeartbeatSettings", (*GRPCServer).UpdateHeartbeatSettings),
		unary("HeartbeatHistory", (*GRPCServer).HeartbeatHistory),
		unary("GetSecurityScore", (*GRPCServer).GetSecurityScore),
		unary("AddNominee", (*GRPCServer).AddNominee),
		unary("ListNominees", (*GRPCServer).ListNominees),
		unary("CreateVaultItem", (*GRPCServer).CreateVaultItem),
		unary("ListVaultItems", (*GRPCServer).ListVaultItems),
		unary("GetVaultItem", (*GRPCServer).GetVaultItem),
		unary("UpdateVaultItem", (*GRPCServer).UpdateVaultItem),
		unary("DeleteVaultItem", (*GRPCServer).DeleteVaultItem),
		unary("VaultStats", (*GRPCServer).VaultStats),
		unary("CreateSmartDoc", (*GRPCServer).CreateSmartDoc),
		unary("ListSmartDocs", (*GRPCServer).ListSmartDocs),
		unary("DeleteSmartDoc", (*GRPCServer).DeleteSmartDoc),
		unary("CreateFolder", (*GRPCServer).CreateFolder),
		unary("ListFolders", (*GRPCServer).ListFolders),
		unary("CreateFileUpload", (*GRPCServer).CreateFileUpload),
		unary("ListFiles", (*GRPCServer).ListFiles),
		unary("GetFileURL", (*GRPCServer).GetFileURL),

		// nominee
		unary("NomineeListVaultItems", (*GRPCServer).NomineeListVaultItems),
		unary("NomineeFileURL", (*GRPCServer).NomineeFileURL),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "vasihat/v1/vault.json",
}

// publicMethods need no access token; nomineeMethods need a nominee token.
// Everything else needs an owner token.
var (
	publicMethods = map[string]bool{
		FullMethod("RequestOTP"):         true,
		FullMethod("VerifyOTP"):          true,
		FullMethod("Register"):           true,
		FullMethod("RefreshToken"):       true,
		FullMethod("RequestNomineeCode"): true,
		FullMethod("VerifyNomineeCode"):  true,
	}
	nomineeMethods = map[string]bool{
		FullMethod("NomineeListVaultItems"): true,
		FullMethod("NomineeFileURL"):        true,
	}
)
