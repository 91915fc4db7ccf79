package fixtures

// npm view output samples.
const (
	// NPMViewPackage is the stdout of `npm view widget --json`, trimmed.
	NPMViewPackage = `{
  "dist-tags": {
    "latest": "1.8.0",
    "rc": "1.9.0"
  },
  "versions": [
    "1.7.0",
    "1.8.0",
    "1.9.0"
  ]
}
`

	// NPMViewSingleVersion is the stdout for a package with one release.
	NPMViewSingleVersion = `{
  "dist-tags": {
    "latest": "1.0.0"
  },
  "versions": "1.0.0"
}
`

	// NPM6NotFound is what npm 6 prints on stdout for an unknown package.
	NPM6NotFound = `{
  "error": {
    "code": "E404",
    "summary": "Not Found - GET https://registry.npmjs.org/widget - Not found",
    "detail": ""
  }
}
`

	// NPM7NotFound is what npm 7 prints on stderr for an unknown package.
	NPM7NotFound = `npm ERR! code E404
npm ERR! 404 Not Found - GET https://registry.npmjs.org/widget - Not found
{
  "error": {
    "code": "E404",
    "summary": "Not Found - GET https://registry.npmjs.org/widget - Not found",
    "detail": "widget@latest is not in this registry."
  }
}

npm ERR! A complete log of this run can be found in:
`

	// NPMViewVersionList is the stdout of `npm view widget@^1 version --json`.
	NPMViewVersionList = `[
  "1.7.0",
  "1.8.0"
]
`
)
