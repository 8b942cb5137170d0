package svn

type Config struct {
	Binary string
}
