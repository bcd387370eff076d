package retrieval

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"path"
	"strings"

	"github.com/google/uuid"

	"ely.by/textures/internal/mojang"
	"ely.by/textures/internal/textures"
)

type MojangProfilesProvider interface {
	GetForUuid(ctx context.Context, user uuid.UUID) (*mojang.ProfileResponse, error)
	GetForUsername(ctx context.Context, username string) (*mojang.ProfileResponse, error)
	GetUuid(ctx context.Context, username string) (*mojang.ProfileInfo, error)
}

type Downloader interface {
	// DownloadTexture returns nil without an error when there is no file at the url
	DownloadTexture(ctx context.Context, textureUrl string) ([]byte, error)
}

type MojangTexturesDownloader interface {
	Downloader
	TextureUrl(digest string) string
}

// MojangRetriever serves textures of the official Minecraft accounts.
//
// When usernames finder is set, the user's uuid is first exchanged to the locally known username
// and then back to the Mojang's uuid, so accounts that share the username with a Mojang account
// get its textures.
type MojangRetriever struct {
	profiles   MojangProfilesProvider
	downloader MojangTexturesDownloader
	usernames  UsernamesFinder
}

func NewMojangRetriever(
	profiles MojangProfilesProvider,
	downloader MojangTexturesDownloader,
	usernames UsernamesFinder,
) *MojangRetriever {
	return &MojangRetriever{
		profiles:   profiles,
		downloader: downloader,
		usernames:  usernames,
	}
}

func (r *MojangRetriever) GetTexture(ctx context.Context, user uuid.UUID, kind textures.Kind) (*textures.RetrievedTexture, error) {
	profile, err := r.profiles.GetForUuid(ctx, r.resolveUuid(ctx, user))
	if err != nil {
		return nil, err
	}

	descriptor, err := textureFromProfile(profile, kind)
	if err != nil || descriptor == nil {
		return nil, err
	}

	digest, err := digestFromUrl(descriptor.Url)
	if err != nil {
		return nil, err
	}

	descriptor.Digest = digest

	return descriptor, nil
}

func (r *MojangRetriever) GetTextureBytes(ctx context.Context, user uuid.UUID, kind textures.Kind) (*textures.RetrievedTextureBytes, error) {
	profile, err := r.profiles.GetForUuid(ctx, r.resolveUuid(ctx, user))
	if err != nil {
		return nil, err
	}

	return r.downloadFromProfile(ctx, profile, kind)
}

func (r *MojangRetriever) GetTextureBytesByUsername(ctx context.Context, username string, kind textures.Kind) (*textures.RetrievedTextureBytes, error) {
	profile, err := r.profiles.GetForUsername(ctx, username)
	if errors.Is(err, mojang.InvalidUsername) {
		return nil, nil
	}

	if err != nil {
		return nil, err
	}

	return r.downloadFromProfile(ctx, profile, kind)
}

// GetTextureBytesByDigest relays the requested digest: Mojang's textures server addresses files by their hash
func (r *MojangRetriever) GetTextureBytesByDigest(ctx context.Context, digest string) (*textures.RetrievedTextureBytes, error) {
	if !textures.IsDigest(digest) {
		return nil, nil
	}

	data, err := r.downloader.DownloadTexture(ctx, r.downloader.TextureUrl(digest))
	if err != nil || data == nil {
		return nil, err
	}

	return &textures.RetrievedTextureBytes{
		Digest: digest,
		Data:   data,
	}, nil
}

func (r *MojangRetriever) SupportsKind(kind textures.Kind) bool {
	return true
}

func (r *MojangRetriever) downloadFromProfile(ctx context.Context, profile *mojang.ProfileResponse, kind textures.Kind) (*textures.RetrievedTextureBytes, error) {
	descriptor, err := textureFromProfile(profile, kind)
	if err != nil || descriptor == nil {
		return nil, err
	}

	data, err := r.downloader.DownloadTexture(ctx, descriptor.Url)
	if err != nil || data == nil {
		return nil, err
	}

	return &textures.RetrievedTextureBytes{
		Digest:   textures.ComputeDigest(data),
		Data:     data,
		Metadata: descriptor.Metadata,
	}, nil
}

// resolveUuid never fails: any problem leaves the original uuid in place
func (r *MojangRetriever) resolveUuid(ctx context.Context, user uuid.UUID) uuid.UUID {
	if r.usernames == nil {
		return user
	}

	username, err := r.usernames.FindUsernameByUuid(ctx, user)
	if err != nil {
		slog.WarnContext(ctx, "Unable to find username for uuid", slog.String("uuid", user.String()), slog.Any("error", err))
		return user
	}

	if username == "" {
		return user
	}

	profile, err := r.profiles.GetUuid(ctx, username)
	if err != nil {
		slog.WarnContext(ctx, "Unable to exchange username to Mojang uuid", slog.String("username", username), slog.Any("error", err))
		return user
	}

	if profile == nil {
		return user
	}

	mojangUuid, err := uuid.Parse(profile.Id)
	if err != nil {
		slog.WarnContext(ctx, "Mojang returned invalid uuid", slog.String("username", username), slog.Any("error", err))
		return user
	}

	return mojangUuid
}

// textureFromProfile returns the descriptor without the digest
func textureFromProfile(profile *mojang.ProfileResponse, kind textures.Kind) (*textures.RetrievedTexture, error) {
	if profile == nil {
		return nil, nil
	}

	decoded, err := profile.DecodeTextures()
	if err != nil {
		return nil, err
	}

	if decoded == nil {
		return nil, fmt.Errorf("%w: profile %s has no textures property", textures.MalformedError, profile.Id)
	}

	if decoded.Textures == nil {
		return nil, nil
	}

	switch kind {
	case textures.Skin:
		skin := decoded.Textures.Skin
		if skin == nil {
			return nil, nil
		}

		result := &textures.RetrievedTexture{Url: skin.Url}
		if skin.Metadata != nil && skin.Metadata.Model != "" {
			result.Metadata = &textures.Metadata{Model: skin.Metadata.Model}
		}

		return result, nil
	case textures.Cape:
		cape := decoded.Textures.Cape
		if cape == nil {
			return nil, nil
		}

		return &textures.RetrievedTexture{Url: cape.Url}, nil
	}

	return nil, nil
}

// digestFromUrl takes the last path segment without the extension,
// e.g. http://textures.minecraft.net/texture/{digest}
func digestFromUrl(textureUrl string) (string, error) {
	parsed, err := url.Parse(textureUrl)
	if err != nil {
		return "", errors.Join(textures.MalformedError, err)
	}

	segment := path.Base(parsed.Path)
	if ext := path.Ext(segment); ext != "" {
		segment = strings.TrimSuffix(segment, ext)
	}

	if segment == "" || segment == "." || segment == "/" {
		return "", fmt.Errorf("%w: no digest in the texture url %q", textures.MalformedError, textureUrl)
	}

	return segment, nil
}
