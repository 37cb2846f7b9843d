package manifest

// File is the on-disk shape of a distmeta.yaml descriptor.
type File struct {
	Name            string              `yaml:"name"`
	Version         string              `yaml:"version"`
	VersionFile     string              `yaml:"version_file"`
	Description     string              `yaml:"description"`
	URL             string              `yaml:"url"`
	Author          string              `yaml:"author"`
	AuthorEmail     string              `yaml:"author_email"`
	License         string              `yaml:"license"`
	PackagePrefix   string              `yaml:"package_prefix"`
	ZipSafe         bool                `yaml:"zip_safe"`
	PythonRequires  string              `yaml:"python_requires"`
	InstallRequires []string            `yaml:"install_requires"`
	Extras          map[string][]string `yaml:"extras"`
	MetaGroups      []MetaGroupDTO      `yaml:"meta_groups"`
	PackageData     map[string][]string `yaml:"package_data"`
	TestsRequire    []string            `yaml:"tests_require"`
	Classifiers     []string            `yaml:"classifiers"`
}

// MetaGroupDTO declares a derived extras group.
type MetaGroupDTO struct {
	Name    string   `yaml:"name"`
	Exclude []string `yaml:"exclude"`
}
