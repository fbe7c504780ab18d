// Package maven models Maven artifact coordinates and parses the textual output
// of `mvn dependency:tree`.
//
// # Coordinates
//
// A [Coordinate] identifies one packaged artifact: group, artifact id, version,
// packaging type (default "jar") and an optional classifier. It knows where the
// artifact lives inside a Maven repository layout:
//
//	c, _ := maven.NewCoordinate("io.quarkus", "quarkus-core", "1.2.3", "", "")
//	c.VersionPath() // io/quarkus/quarkus-core/1.2.3
//	c.FileName()    // quarkus-core-1.2.3.jar
//
// # Vendor Classification
//
// Artifacts rebuilt by the product vendor carry a marker in their version
// string (for example "1.2.3.redhat-00001"). A [Classifier] holds that marker
// and is the single predicate used both to filter the community dependency
// report and to select which BOM entries must exist in the repository.
//
// # Dependency Trees
//
// [ParseTreeLine] turns one line of dependency-tree output into a coordinate:
//
//	[INFO] +- io.vertx:vertx-core:jar:4.1.0:compile
//	[INFO] |  \- io.netty:netty-transport-native-epoll:jar:linux-x86_64:4.1.65.Final:runtime
//
// Only compile and runtime scopes are kept. [ParseTree] parses a whole
// output into a deduplicated [Set].
package maven
