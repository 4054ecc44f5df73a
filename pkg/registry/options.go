package registry

type Options struct {
	Listen         string
	TLS            *TLSOptions
	S3             *S3Options
	Local          *LocalFSOptions
	CachePath      string
	EnableRedirect bool
	Auth           *AuthOptions
}

func DefaultOptions() *Options {
	return &Options{
		Listen:         ":8080",
		TLS:            &TLSOptions{},
		S3:             NewDefaultS3Options(),
		Local:          NewDefaultLocalFSOptions(),
		CachePath:      "",
		EnableRedirect: false,
		Auth:           NewDefaultAuthOptions(),
	}
}

type TLSOptions struct {
	CertFile string
	KeyFile  string
	CAFile   string
}
