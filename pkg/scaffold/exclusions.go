package scaffold

import "strings"

// DefaultExclusions are the artifact ids kept out of the scaffold project
// analyzed for community dependencies.
var DefaultExclusions = []string{
	"quarkus-maven-plugin",
	"quarkus-bootstrap-maven-plugin",
	"quarkus-bom",
	"quarkus-bom-quarkus-platform-properties",
	"quarkus-logging-json-deployment",
	"quarkus-smallrye-opentracing-deployment",
	"quarkus-smallrye-reactive-messaging-deployment",
	"quarkus-vertx-deployment",
	"quarkus-spring-data-jpa-deployment",
	"quarkus-spring-di-deployment",
	"quarkus-spring-web-deployment",
	"quarkus-spring-boot-properties-deployment",
	"quarkus-spring-security-deployment",
	"quarkus-smallrye-reactive-streams-operators-deployment",
	"quarkus-smallrye-reactive-messaging-amqp-deployment",
	"quarkus-smallrye-reactive-messaging-kafka-deployment",
	"quarkus-smallrye-openapi-deployment",
	"quarkus-smallrye-jwt-deployment",
	"quarkus-smallrye-fault-tolerance-deployment",
	"quarkus-smallrye-context-propagation-deployment",
	"quarkus-rest-client-deployment",
	"quarkus-scheduler-deployment",
	"quarkus-oidc-deployment",
	"quarkus-oidc-client-deployment",
	"quarkus-oidc-client-filter-deployment",
	"quarkus-quartz-deployment",
	"quarkus-reactive-pg-client-deployment",
	"quarkus-keycloak-authorization-deployment",
	"quarkus-narayana-jta-deployment",
	"quarkus-jsonp-deployment",
	"quarkus-jsonb-deployment",
	"quarkus-jackson-deployment",
	"quarkus-jdbc-mariadb-deployment",
	"quarkus-jdbc-mssql-deployment",
	"quarkus-jdbc-mysql-deployment",
	"quarkus-jdbc-postgresql-deployment",
	"quarkus-jaxb-deployment",
	"quarkus-config-yaml-deployment",
	"quarkus-hibernate-orm-deployment",
	"quarkus-hibernate-validator-deployment",
	"quarkus-resteasy-deployment",
	"quarkus-resteasy-jsonb-deployment",
	"quarkus-resteasy-jaxb-deployment",
	"quarkus-resteasy-jackson-deployment",
	"quarkus-agroal-deployment",
	"quarkus-smallrye-metrics-deployment",
	"quarkus-netty-deployment",
	"quarkus-smallrye-health-deployment",
	"quarkus-hibernate-orm-panache-deployment",
	"quarkus-kafka-client-deployment",
	"quarkus-cache-deployment",
	"quarkus-grpc-deployment",
	"quarkus-infinispan-client-deployment",
	"quarkus-kafka-streams-deployment",
	"quarkus-kubernetes-client-deployment",
	"quarkus-kubernetes-config-deployment",
	"quarkus-mailer-deployment",
	"quarkus-qute-deployment",
	"quarkus-reactive-db2-client-deployment",
	"quarkus-reactive-mysql-client-deployment",
	"quarkus-rest-client-jackson-deployment",
	"quarkus-rest-client-jaxb-deployment",
	"quarkus-rest-client-jsonb-deployment",
	"quarkus-resteasy-qute-deployment",
	"quarkus-security-jpa-deployment",
	"quarkus-spring-cache-deployment",
	"quarkus-spring-cloud-config-client-deployment",
	"quarkus-spring-scheduled-deployment",
	"quarkus-vertx-graphql-deployment",
	"quarkus-micrometer-deployment",
	"quarkus-resteasy-multipart-deployment",
	"quarkus-rest-client-mutiny-deployment",
	"quarkus-jaxp-deployment",
	"quarkus-openshift-client-deployment",
	"quarkus-spring-data-rest-deployment",
	"quarkus-kubernetes-service-binding-deployment",
	"quarkus-micrometer-registry-prometheus-deployment",
	"quarkus-container-image-openshift-deployment",
	"quarkus-container-image-s2i-deployment",
	"quarkus-smallrye-jwt-build-deployment",
	"quarkus-hibernate-orm-rest-data-panache-deployment",
	"quarkus-resteasy-mutiny-deployment",
	"quarkus-reactive-messaging-http-deployment",
	"quarkus-vertx-web-deployment",
	"quarkus-resteasy-reactive-common-deployment",
	"quarkus-resteasy-reactive-deployment",
	"quarkus-resteasy-reactive-jackson-deployment",
	"quarkus-resteasy-reactive-jackson-common-deployment",
	"quarkus-resteasy-reactive-jsonb-deployment",
	"quarkus-resteasy-reactive-qute-deployment",
	"quarkus-undertow-deployment",
	"quarkus-hibernate-reactive-deployment",
	"quarkus-avro-deployment",
	"quarkus-openshift-deployment",
	"quarkus-rest-client-reactive-deployment",
	"quarkus-mongodb-client-deployment",
	"quarkus-websockets-client-deployment",
	"quarkus-reactive-mssql-client-deployment",
	"quarkus-mutiny-deployment",
	"quarkus-opentelemetry-exporter-jaeger-deployment",
	"quarkus-opentelemetry-deployment",
	"quarkus-oidc-client-reactive-filter-deployment",
	"quarkus-websockets-deployment",
	"quarkus-jdbc-oracle-deployment",
}

// Excluded reports whether artifactID is filtered out: true when any filter
// entry contains it as a substring. Runtime ids are therefore excluded by
// their "-deployment" entries, e.g. "quarkus-vertx" by
// "quarkus-vertx-deployment".
func Excluded(filter []string, artifactID string) bool {
	for _, f := range filter {
		if strings.Contains(f, artifactID) {
			return true
		}
	}
	return false
}

// Select returns the ids not excluded by filter, preserving order.
func Select(ids, filter []string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if !Excluded(filter, id) {
			out = append(out, id)
		}
	}
	return out
}
